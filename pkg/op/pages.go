package op

import (
	"html/template"
	"net/http"
)

var signoutTmpl = template.Must(template.New("signout").Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<title>Logout</title>
</head>
<body>
	<h1>Do you want to sign out?</h1>
	{{if .LogoutID}}<div id="logout-id" data-logout-id="{{.LogoutID}}"></div>{{end}}
</body>
</html>`))

var signoutCallbackTmpl = template.Must(template.New("signout_callback").Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<title>Logout</title>
</head>
<body>
	<h1>You are now signed out</h1>
	{{range .FrontChannelLogoutURLs}}<iframe style="display:none" width="0" height="0" src="{{.}}"></iframe>
	{{end}}
</body>
</html>`))

func writeSignoutPage(w http.ResponseWriter, result *SignoutPageResult) {
	w.Header().Set("content-type", "text/html; charset=utf-8")
	w.Header().Set("cache-control", "no-store, no-cache, max-age=0")
	if err := signoutTmpl.Execute(w, result); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeSignoutCallbackPage(w http.ResponseWriter, urls []string) {
	w.Header().Set("content-type", "text/html; charset=utf-8")
	w.Header().Set("cache-control", "no-store, no-cache, max-age=0")
	data := struct {
		FrontChannelLogoutURLs []string
	}{urls}
	if err := signoutCallbackTmpl.Execute(w, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
