package httpapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ersonp/kinship/internal/application/handlers"
	"github.com/ersonp/kinship/internal/domain/entities"
)

// Handlers are the use cases the API exposes.
type Handlers struct {
	Persons       *handlers.PersonHandler
	Relationships *handlers.RelationshipHandler
	FamilyTree    *handlers.FamilyTreeHandler
}

type api struct {
	Handlers
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time
}

type createPersonRequest struct {
	Name      string `json:"name" binding:"required"`
	BirthDate string `json:"birth_date"`
}

type updatePersonRequest struct {
	Name      *string        `json:"name"`
	BirthDate optionalString `json:"birth_date"`
}

// optionalString tells an absent key apart from an explicit null.
type optionalString struct {
	Set   bool
	Value *string
}

func (o *optionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("must be a string or null: %w", err)
	}
	o.Value = &s
	return nil
}

type listPersonsQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=0,max=1000"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

type searchQuery struct {
	Query    string `form:"q" binding:"required"`
	Semantic bool   `form:"semantic"`
	Limit    int    `form:"limit" binding:"omitempty,min=0,max=100"`
}

type relationshipRequest struct {
	Person1ID string `json:"person1_id" binding:"required"`
	Person2ID string `json:"person2_id" binding:"required"`
	Kind      string `json:"kind" binding:"required,relation_kind"`
}

type deleteResponse struct {
	Deleted bool `json:"deleted"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func (a *api) health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{Status: "ok", Timestamp: a.now().UTC()})
}

func (a *api) createPerson(c *gin.Context) {
	var req createPersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, describeBindError(err))
		return
	}

	person, err := a.Persons.HandleCreate(c.Request.Context(), req.Name, req.BirthDate)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, person)
}

func (a *api) updatePerson(c *gin.Context) {
	var req updatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, describeBindError(err))
		return
	}

	person, err := a.Persons.HandleUpdate(c.Request.Context(), c.Param("id"), handlers.UpdateOptions{
		Name:           req.Name,
		BirthDate:      req.BirthDate.Value,
		ClearBirthDate: req.BirthDate.Set && req.BirthDate.Value == nil,
	})
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, person)
}

func (a *api) getPerson(c *gin.Context) {
	person, err := a.Persons.HandleGet(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	if person == nil {
		notFound(c, "person")
		return
	}
	c.JSON(http.StatusOK, person)
}

func (a *api) listPersons(c *gin.Context) {
	var q listPersonsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, describeBindError(err))
		return
	}

	result, err := a.Persons.HandleList(c.Request.Context(), q.Limit, q.Offset)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (a *api) searchPersons(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, describeBindError(err))
		return
	}

	persons, err := a.Persons.HandleSearch(c.Request.Context(), q.Query, q.Semantic, q.Limit)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"persons": persons})
}

func (a *api) createRelationship(c *gin.Context) {
	var req relationshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, describeBindError(err))
		return
	}

	rel, err := a.Relationships.HandleCreate(c.Request.Context(), req.Person1ID, req.Person2ID, req.Kind)
	if err != nil {
		a.metrics.recordWrite("create", kindLabel(req.Kind), "error")
		a.respondError(c, err)
		return
	}
	a.metrics.recordWrite("create", string(rel.Kind), "ok")
	c.JSON(http.StatusCreated, rel)
}

func (a *api) deleteRelationship(c *gin.Context) {
	var req relationshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, describeBindError(err))
		return
	}

	deleted, err := a.Relationships.HandleDelete(c.Request.Context(), req.Person1ID, req.Person2ID, req.Kind)
	if err != nil {
		a.metrics.recordWrite("delete", kindLabel(req.Kind), "error")
		a.respondError(c, err)
		return
	}
	result := "noop"
	if deleted {
		result = "ok"
	}
	a.metrics.recordWrite("delete", kindLabel(req.Kind), result)
	c.JSON(http.StatusOK, deleteResponse{Deleted: deleted})
}

// kindLabel keeps the metric's kind label to the known kinds.
func kindLabel(raw string) string {
	kind, err := entities.ParseKind(raw)
	if err != nil {
		return "invalid"
	}
	return string(kind)
}

func (a *api) personRelationships(c *gin.Context) {
	view, err := a.FamilyTree.HandleRelationships(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	if view == nil {
		notFound(c, "person")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (a *api) familyTree(c *gin.Context) {
	tree, err := a.FamilyTree.HandleFamilyTree(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	if tree == nil {
		notFound(c, "person")
		return
	}
	c.JSON(http.StatusOK, tree)
}
