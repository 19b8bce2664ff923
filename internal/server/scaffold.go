package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	scaffolddomain "github.com/launchforge/launchforge/internal/scaffold/domain"
)

func (s *Server) ListScaffoldOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"steps": s.scaffoldSvc.Options()})
}

func (s *Server) CreateBlueprint(c *gin.Context) {
	var req scaffolddomain.CreateBlueprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	blueprint, err := s.scaffoldSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, blueprint)
}

func (s *Server) GetBlueprint(c *gin.Context) {
	blueprint, err := s.scaffoldSvc.GetByID(c.Request.Context(), scaffolddomain.GetBlueprintRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, blueprint)
}

func (s *Server) ListBlueprints(c *gin.Context) {
	var req struct {
		PageToken string `form:"page_token"`
		PageSize  int32  `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.scaffoldSvc.List(c.Request.Context(), scaffolddomain.ListBlueprintRequest{
		PageToken: req.PageToken,
		PageSize:  req.PageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
