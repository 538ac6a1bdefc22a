package router

import "github.com/gin-gonic/gin"

// Module is one routable feature area (auth, posts, admin). Each module
// attaches its routes and route-local middleware to the group it is given;
// group-wide middleware is installed by the registry beforehand.
type Module interface {
	Register(rg *gin.RouterGroup)
}
