// Package formhttp serves form sessions over HTTP with a chi router.
//
// A Handler owns one form definition. Each visitor gets a session stored in
// an expiring in-memory cache:
//
//	GET  /                              create a session, redirect to /{id}
//	GET  /{id}                          render the form as HTML
//	POST /{id}/fields/{name}/blur       change + blur one field, JSON reply
//	POST /{id}/sections/{name}/toggle   flip a section, JSON reply
//	POST /{id}/submit                   parse the form and submit it
//
// Mount it under a prefix with chi and pass the same prefix to WithBasePath:
//
//	h, err := formhttp.New(def, formhttp.WithBasePath("/signup"),
//		formhttp.WithSubmitFunc(save))
//	r := chi.NewRouter()
//	r.Mount("/signup", h)
package formhttp
