package presenter

import "net/http"

// Sync prompt actions, named after the endpoints that perform them.
const (
	ActionAcceptRemote = "accept"
	ActionKeepLocal    = "keep"
)

// FormField describes one input of a declarative form.
type FormField struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Placeholder string `json:"placeholder"`
	Required    bool   `json:"required"`
}

// Button is a form's submit control.
type Button struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Form describes a form a client can render without hard-coding it.
type Form struct {
	Title  string      `json:"title"`
	Method string      `json:"method"`
	Action string      `json:"action"`
	Fields []FormField `json:"fields"`
	Submit Button      `json:"submit"`
}

// AddQuoteForm describes the form that submits a new quote to action.
func AddQuoteForm(action string) Form {
	return Form{
		Title:  "Add a New Quote",
		Method: http.MethodPost,
		Action: action,
		Fields: []FormField{
			{ID: "newQuoteText", Name: "text", Type: "text", Placeholder: "Enter a new quote", Required: true},
			{ID: "newQuoteCategory", Name: "category", Type: "text", Placeholder: "Enter quote category", Required: true},
		},
		Submit: Button{ID: "addQuoteBtn", Label: "Add Quote"},
	}
}
