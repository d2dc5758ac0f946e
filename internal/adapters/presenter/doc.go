// Package presenter keeps a declarative view model of what the quote page
// currently shows.
//
// The application layer issues render instructions through [ports.Presenter];
// [ViewModel] records them so the HTTP adapter can serve the current view as
// JSON. The add-quote form is described by [AddQuoteForm] rather than built
// imperatively.
package presenter
