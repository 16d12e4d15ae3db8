package contracts

import "github.com/julienschmidt/httprouter"

// Handler is implemented by each service's HTTP surface so the application
// shell can mount it without knowing its routes.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
