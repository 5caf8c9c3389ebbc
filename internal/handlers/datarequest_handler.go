package handlers

import (
	"net/http"
	"strconv"

	"andromeda/internal/middleware"
	"andromeda/internal/repository"
	"andromeda/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DataRequestHandler struct {
	service       service.DataRequestService
	exportService service.ExportService
}

func NewDataRequestHandler(service service.DataRequestService, exportService service.ExportService) *DataRequestHandler {
	return &DataRequestHandler{
		service:       service,
		exportService: exportService,
	}
}

// List godoc
// @Summary Листинг запросов данных
// @Description Возвращает страницу запросов с фасетами по состоянию и организациям
// @Tags DataRequests
// @Produce json
// @Router /datarequests [get]
func (h *DataRequestHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": `"page" parameter must be a positive integer`})
		return
	}

	params := service.ListParams{
		OrganizationID:           c.Query("organization"),
		UserID:                   c.Query("user"),
		State:                    c.Query("state"),
		Query:                    c.Query("q"),
		Sort:                     c.DefaultQuery("sort", "desc"),
		Page:                     page,
		IncludeOrganizationFacet: true,
	}

	result, err := h.service.List(ctx, params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *DataRequestHandler) Create(c *gin.Context) {
	var payload service.DataRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	dr, err := h.service.Create(c.Request.Context(), middleware.CurrentIdentity(c), payload)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dr)
}

func (h *DataRequestHandler) Show(c *gin.Context) {
	id, ok := parseID(c, c.Param("id"))
	if !ok {
		return
	}

	detail, err := h.service.Show(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (h *DataRequestHandler) Update(c *gin.Context) {
	id, ok := parseID(c, c.Param("id"))
	if !ok {
		return
	}

	var payload service.DataRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	dr, err := h.service.Update(c.Request.Context(), middleware.CurrentIdentity(c), id, payload)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dr)
}

func (h *DataRequestHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, c.Param("id"))
	if !ok {
		return
	}

	dr, err := h.service.Delete(c.Request.Context(), middleware.CurrentIdentity(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "data request has been deleted",
		"title":   dr.Title,
	})
}

// CloseCandidates godoc
// @Summary Датасеты для закрытия запроса
// @Description Датасеты организации запроса либо последние добавленные в каталог
// @Tags DataRequests
// @Produce json
// @Router /datarequests/{id}/close [get]
func (h *DataRequestHandler) CloseCandidates(c *gin.Context) {
	id, ok := parseID(c, c.Param("id"))
	if !ok {
		return
	}

	datasets, err := h.service.CloseCandidates(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"datasets": datasets})
}

func (h *DataRequestHandler) Close(c *gin.Context) {
	id, ok := parseID(c, c.Param("id"))
	if !ok {
		return
	}

	var body struct {
		AcceptedDatasetID string `json:"accepted_dataset_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	dr, err := h.service.Close(c.Request.Context(), middleware.CurrentIdentity(c), id, body.AcceptedDatasetID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dr)
}

// Export godoc
// @Summary Выгрузка листинга в csv или xlsx
// @Tags DataRequests
// @Produce octet-stream
// @Router /datarequests/export [get]
func (h *DataRequestHandler) Export(c *gin.Context) {
	ctx := c.Request.Context()

	filters := repository.DataRequestFilters{
		UserID:         c.Query("user"),
		OrganizationID: c.Query("organization"),
		Query:          c.Query("q"),
		Sort:           c.DefaultQuery("sort", "desc"),
	}
	if state := c.Query("state"); state != "" {
		closed := state == "closed"
		filters.Closed = &closed
	}

	path, err := h.exportService.Export(ctx, c.DefaultQuery("format", "csv"), filters)
	if err != nil {
		respondError(c, err)
		return
	}

	c.File(path)
}

// parseID разбирает идентификатор из пути, невалидный uuid - это 400
func parseID(c *gin.Context, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}
