// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package main

import (
	"context"
	"html/template"
	"net/http"

	"github.com/google/x86corpus/pkg/log"
	"github.com/google/x86corpus/pkg/stat"
	"github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func serveHTTP(ctx context.Context, addr string) error {
	log.Logf(0, "serving http on http://%v", addr)
	server := &http.Server{Addr: addr, Handler: newHTTPHandler()}
	go func() {
		<-ctx.Done()
		server.Close()
	}()
	err := server.ListenAndServe()
	if err != http.ErrServerClosed {
		return err
	}
	return nil
}

func newHTTPHandler() http.Handler {
	mux := http.NewServeMux()
	handle := func(pattern string, handler func(http.ResponseWriter, *http.Request)) {
		mux.Handle(pattern, handlers.CompressHandler(http.HandlerFunc(handler)))
	}
	handle("/", httpMain)
	handle("/metrics", promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{}).ServeHTTP)
	// Browsers like to request this, without special handler this goes to / handler.
	handle("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {})
	return mux
}

type uiSummary struct {
	Stats []stat.UI
	Log   string
}

func httpMain(w http.ResponseWriter, r *http.Request) {
	data := &uiSummary{
		Stats: stat.Collect(stat.All),
		Log:   log.CachedLogOutput(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := mainTemplate.Execute(w, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

var mainTemplate = template.Must(template.New("").Parse(`<!doctype html>
<html>
<head>
	<title>x86corpus</title>
</head>
<body>
<table>
	<caption>Stats</caption>
	{{range $s := $.Stats}}
	<tr>
		<td title="{{$s.Desc}}">{{$s.Name}}</td>
		<td>{{$s.Value}}</td>
	</tr>
	{{end}}
</table>
<pre>{{.Log}}</pre>
</body>
</html>
`))
