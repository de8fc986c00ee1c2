package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (a *api) routes(engine *gin.Engine, gatherer prometheus.Gatherer) {
	engine.GET("/health", a.health)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	v1 := engine.Group("/api/v1")

	persons := v1.Group("/persons")
	persons.POST("", a.createPerson)
	persons.GET("", a.listPersons)
	persons.GET("/search", a.searchPersons)
	persons.GET("/:id", a.getPerson)
	persons.PATCH("/:id", a.updatePerson)
	persons.GET("/:id/relationships", a.personRelationships)
	persons.GET("/:id/family-tree", a.familyTree)

	relationships := v1.Group("/relationships")
	relationships.POST("", a.createRelationship)
	relationships.DELETE("", a.deleteRelationship)
}
