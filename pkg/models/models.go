package models

// Operation — тип обращения к модели.
type Operation string

const (
	OpAnalyze       Operation = "analyze"
	OpRefineSmaller Operation = "refine_smaller"
	OpRefineLarger  Operation = "refine_larger"
	OpRender        Operation = "render"
)

// Direction — направление изменения состава букета.
type Direction string

const (
	DirectionSmaller Direction = "smaller"
	DirectionLarger  Direction = "larger"
)

// Action — токен кнопки, приходит в callback data.
type Action string

const (
	ActionShrink  Action = "bouquet:shrink"
	ActionEnlarge Action = "bouquet:enlarge"
	ActionDraw    Action = "bouquet:draw"
	ActionOrder   Action = "bouquet:order"
)

// OutcomeKind — вид результата шага воркфлоу.
type OutcomeKind string

const (
	OutcomeAnalysis          OutcomeKind = "analysis"
	OutcomeRefinement        OutcomeKind = "refinement"
	OutcomeRender            OutcomeKind = "render"
	OutcomeRenderUnavailable OutcomeKind = "render_unavailable"
	OutcomeOrderConfirmed    OutcomeKind = "order_confirmed"
)

// Меню действий для каждого шага. Кнопки «меньше»/«больше» предлагаются
// только сразу после анализа: после первого уточнения состава они
// убираются при построении клавиатуры.
var (
	MenuAfterAnalysis   = []Action{ActionShrink, ActionEnlarge, ActionDraw, ActionOrder}
	MenuAfterRefinement = []Action{ActionDraw, ActionOrder}
	MenuAfterRender     = []Action{ActionOrder}
)
