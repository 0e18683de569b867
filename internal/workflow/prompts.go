package workflow

const analyzePrompt = `Проанализируй фото букета. Ответь на русском:
1. Какие цветы? (названия)
2. Сколько примерно каждого вида?
3. Примерная стоимость в Москве?

Ответь кратко, одним блоком текста: состав, количество, стоимость.`

const refineSmallerInstruction = `Уменьши состав букета примерно на 20%, сохранив стиль и основные акцентные цветы. Ответь обновлённым описанием в том же формате: состав, количество каждого вида, примерная стоимость в Москве.`

const refineLargerInstruction = `Увеличь состав букета примерно на 20%, сохранив стиль и основные акцентные цветы. Ответь обновлённым описанием в том же формате: состав, количество каждого вида, примерная стоимость в Москве.`

func renderPrompt(description string) string {
	return `Нарисуй реалистичную фотографию букета по описанию. Светлый фон, флористическая упаковка, без текста на картинке.

Описание букета:
` + description
}
