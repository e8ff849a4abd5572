package completion

type Model struct {
	ID    string `json:"value"`
	Label string `json:"label"`
}

const DefaultModel = "gemini-2.0-flash-lite"

var models = []Model{
	{ID: "gemini-2.0-flash-lite", Label: "Gemini 2.0 Flash Lite"},
	{ID: "gemini-2.5-flash", Label: "Gemini 2.5 Flash"},
	{ID: "gemini-1.5-flash", Label: "Gemini 1.5 Flash"},
	{ID: "gemini-1.5-pro", Label: "Gemini 1.5 Pro"},
}

// Models lists the selectable models, default first.
func Models() []Model {
	out := make([]Model, len(models))
	copy(out, models)

	return out
}
