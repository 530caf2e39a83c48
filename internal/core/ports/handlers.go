package ports

import "github.com/gin-gonic/gin"

type AuthHTTPHandler interface {
	Login(c *gin.Context)
	Check(c *gin.Context)
	Logout(c *gin.Context)
}

type VideoHTTPHandler interface {
	ListVideos(c *gin.Context)
	AddVideo(c *gin.Context)
}
