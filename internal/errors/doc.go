// Package errors provides the coded, actionable errors polyroute reports for
// configuration and CLI problems.
//
// Each error has a registered code (e.g. "E101") that maps to a category, a
// short message and a longer explanation. Errors are built from the code and
// enriched with the specifics:
//
//	err := errors.New("E101").
//	    WithDetail(`"en_US" is not a language-country identifier.`).
//	    WithLocation("polyroute.json", 3, 15).
//	    WithSuggestion(`Use "en-US".`)
//
//	fmt.Fprint(os.Stderr, err.Format())
//	// Output:
//	// ERROR E101: Invalid locale
//	//
//	//   polyroute.json:3:15
//	//
//	//       2 │   "applicationId": "shop",
//	//   →   3 │   "locales": ["en_US"],
//	//         │               ^
//	//       4 │ }
//	//
//	//   "en_US" is not a language-country identifier.
//	//
//	//   Hint: Use "en-US".
//
// Library packages return plain wrapped errors; only the configuration layer
// and the CLI produce *Error values. errors.Is and errors.As see through them
// via Unwrap.
package errors
