package locales

import (
	_ "embed"
	"encoding/json"
	"log"
)

//go:embed locales.json
var localesJSON []byte

// Locales содержит все текстовые строки из locales.json
type Locales struct {
	Help     Help     `json:"help"`
	Analyze  Analyze  `json:"analyze"`
	Refine   Refine   `json:"refine"`
	Render   Render   `json:"render"`
	Order    Order    `json:"order"`
	Errors   Errors   `json:"errors"`
	Keyboard Keyboard `json:"keyboard"`
}

type Help struct {
	Start   string `json:"start"`
	Default string `json:"default"`
}

type Analyze struct {
	Waiting string `json:"waiting"`
	Header  string `json:"header"`
}

type Refine struct {
	WaitingSmaller string `json:"waiting_smaller"`
	WaitingLarger  string `json:"waiting_larger"`
	Header         string `json:"header"`
}

type Render struct {
	Waiting     string `json:"waiting"`
	Caption     string `json:"caption"`
	Unavailable string `json:"unavailable"`
}

type Order struct {
	Confirmed string `json:"confirmed"`
}

type Errors struct {
	BadPhoto string `json:"bad_photo"`
	Upstream string `json:"upstream"`
}

// Keyboard — подписи inline-кнопок.
type Keyboard struct {
	Shrink  string `json:"shrink"`
	Enlarge string `json:"enlarge"`
	Draw    string `json:"draw"`
	Order   string `json:"order"`
}

var L *Locales

func init() {
	L = &Locales{}
	if err := json.Unmarshal(localesJSON, L); err != nil {
		log.Fatalf("Не удалось распарсить locales.json: %v", err)
	}
}

// Get возвращает указатель на локали
func Get() *Locales {
	return L
}
