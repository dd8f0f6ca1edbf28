package router

import "github.com/gin-gonic/gin"

// Module is one group of ops routes. Name shows up in the startup log.
type Module interface {
	Name() string
	Register(rg *gin.RouterGroup)
}
