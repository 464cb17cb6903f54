package server

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

// Handler assembles the HTTP surface: the REST API plus the websocket
// feed. The meeting shell is a separate front end, so there is no static
// file serving here.
func Handler(hub *Hub, deps Deps) http.Handler {
	mux := http.NewServeMux()

	registerWSRoute(mux, hub)
	registerAPIRoutes(mux, deps)

	return mux
}

func Serve(addr string, log logrus.FieldLogger, hub *Hub, deps Deps) error {
	if log == nil {
		log = logrus.StandardLogger()
	}
	log.WithField("addr", addr).Info("api listening")
	return http.ListenAndServe(addr, Handler(hub, deps))
}
