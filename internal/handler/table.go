package handler

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/query-explorer/internal/export"
	"github.com/maxviazov/query-explorer/internal/model"
	"github.com/maxviazov/query-explorer/internal/pagination"
	"github.com/maxviazov/query-explorer/internal/service"
	"github.com/maxviazov/query-explorer/pkg/response"
)

// DefaultRecordsPerPage applies when a request omits records_per_page.
const DefaultRecordsPerPage = 10

type TableHandler struct {
	svc            service.TableService
	defaultPerPage int
}

func NewTableHandler(svc service.TableService, defaultPerPage int) *TableHandler {
	if defaultPerPage <= 0 {
		defaultPerPage = DefaultRecordsPerPage
	}
	return &TableHandler{svc: svc, defaultPerPage: defaultPerPage}
}

// RegisterRoot mounts the endpoints the explorer UI calls directly. Both
// slash variants are registered so neither triggers a redirect.
func (h *TableHandler) RegisterRoot(r gin.IRoutes) {
	r.GET(pagination.TableDataPath, h.tableData)
	r.GET(pagination.TableDataPath+"/", h.tableData)
	r.GET("/get-table-columns", h.columns)
	r.GET("/get-table-columns/", h.columns)
	r.GET("/download-table", h.download)
	r.GET("/download-table/", h.download)
	r.POST("/reset-session", h.reset)
}

func (h *TableHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/tables")
	{
		g.GET("", h.list)
		g.POST("", h.publish)
		g.GET("/:table_name/columns", h.columns)
		g.GET("/:table_name/export", h.download)
		g.DELETE("/:table_name", h.delete)
	}
}

func (h *TableHandler) tableData(c *gin.Context) {
	page, err := intQuery(c, "page_number", 1)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	perPage, err := intQuery(c, "records_per_page", h.defaultPerPage)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	out, err := h.svc.GetTablePage(c.Request.Context(), c.Query("table_name"), page, perPage)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, out)
}

func (h *TableHandler) columns(c *gin.Context) {
	name := c.Param("table_name")
	if name == "" {
		name = c.Query("table_name")
	}
	cols, err := h.svc.GetColumns(c.Request.Context(), name)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, gin.H{"columns": cols})
}

// download sends the whole table as an xlsx attachment named after it.
func (h *TableHandler) download(c *gin.Context) {
	name := c.Param("table_name")
	if name == "" {
		name = c.Query("table_name")
	}
	tbl, err := h.svc.ExportTable(c.Request.Context(), name)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	// buffered so a failed encode still gets an error response
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, tbl); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Header("Content-Disposition", export.AttachmentDisposition(export.XLSXFilename(name)))
	c.Data(http.StatusOK, export.XLSXContentType, buf.Bytes())
}

func (h *TableHandler) list(c *gin.Context) {
	tables, err := h.svc.ListTables(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, gin.H{"tables": tables})
}

type publishTableRequest struct {
	Name    string     `json:"table_name"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

func (h *TableHandler) publish(c *gin.Context) {
	var req publishTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.ErrInvalidInput) // parse details stay internal
		return
	}
	sum, err := h.svc.PublishTable(c.Request.Context(), model.ResultTable{
		Name:    req.Name,
		Columns: req.Columns,
		Rows:    req.Rows,
	})
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, sum)
}

func (h *TableHandler) delete(c *gin.Context) {
	if err := h.svc.DeleteTable(c.Request.Context(), c.Param("table_name")); err != nil {
		response.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TableHandler) reset(c *gin.Context) {
	if err := h.svc.Reset(c.Request.Context()); err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, gin.H{"message": "Session state cleared successfully"})
}

// intQuery reads an integer query parameter, falling back to def when absent.
func intQuery(c *gin.Context, key string, def int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, service.InvalidField(key, "must be an integer")
	}
	return v, nil
}
