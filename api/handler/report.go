package handler

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/crm-reports/api/transport"
	"github.com/fastygo/crm-reports/domain"
	"github.com/fastygo/crm-reports/pkg/httpcontext"
	exportUC "github.com/fastygo/crm-reports/usecase/export"
	reportUC "github.com/fastygo/crm-reports/usecase/report"
)

// exportQueryKey selects an export format on GET report routes.
const exportQueryKey = "export"

type ReportHandler struct {
	baseHandler
	reports *reportUC.UseCase
	exports *exportUC.UseCase
}

func NewReportHandler(reports *reportUC.UseCase, exports *exportUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		baseHandler: newBaseHandler(adapter, logger),
		reports:     reports,
		exports:     exports,
	}
}

type reportResponse struct {
	Report   *reportUC.Report          `json:"report"`
	Document *transport.ExportResponse `json:"document,omitempty"`
}

// @Summary List available reports
// @Tags reports
// @Router /api/v1/reports [get]
func (h *ReportHandler) List(ctx *fasthttp.RequestCtx) {
	viewer, ok := h.viewer(ctx)
	if !ok {
		return
	}
	defs := h.reports.Catalog().Definitions()
	out := make([]transport.ReportInfo, 0, len(defs))
	for _, def := range defs {
		out = append(out, transport.ReportInfo{
			Name:        def.Name,
			Title:       def.Title,
			Description: def.Description,
			Aliases:     def.Aliases,
			Filters:     def.Filters,
			Required:    def.Required,
			Restricted:  def.MaxRoleLevel > 0,
			Accessible:  viewer.CanAccess(def.MaxRoleLevel),
		})
	}
	h.respondSuccess(ctx, http.StatusOK, out)
}

// @Summary Run a report from a JSON body
// @Tags reports
// @Router /api/v1/reports [post]
func (h *ReportHandler) Run(ctx *fasthttp.RequestCtx) {
	viewer, ok := h.viewer(ctx)
	if !ok {
		return
	}
	var req transport.ReportRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.ReportName == "" {
		h.respondInvalid(ctx, "report_name is required")
		return
	}
	h.run(ctx, req.ReportName, req.Filters, req.Export, viewer)
}

// @Summary Run a report with filters from the query string
// @Tags reports
// @Router /api/v1/reports/{name} [get]
func (h *ReportHandler) Get(ctx *fasthttp.RequestCtx) {
	viewer, ok := h.viewer(ctx)
	if !ok {
		return
	}
	name, _ := ctx.UserValue("name").(string)
	filters, format := queryFilters(ctx)
	h.run(ctx, name, filters, format, viewer)
}

// @Summary Dashboard bundle
// @Tags reports
// @Router /api/v1/dashboard [get]
func (h *ReportHandler) Dashboard(ctx *fasthttp.RequestCtx) {
	viewer, ok := h.viewer(ctx)
	if !ok {
		return
	}
	filters, _ := queryFilters(ctx)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	dashboard, err := h.reports.Dashboard(stdCtx, filters, viewer)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, dashboard)
}

func (h *ReportHandler) run(ctx *fasthttp.RequestCtx, name string, filters map[string]string, format string, viewer domain.Viewer) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	rep, err := h.reports.Run(stdCtx, name, filters, viewer)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	resp := reportResponse{Report: rep}
	if format != "" {
		doc, err := h.exports.Export(stdCtx, rep, format)
		if err != nil {
			h.respondError(stdCtx, ctx, err)
			return
		}
		resp.Document = exportResponse(doc)
	}
	h.respondSuccess(ctx, http.StatusOK, resp)
}

// queryFilters collects filters from query args; the export key is returned separately.
func queryFilters(ctx *fasthttp.RequestCtx) (map[string]string, string) {
	filters := make(map[string]string)
	var format string
	ctx.QueryArgs().VisitAll(func(key, value []byte) {
		if string(key) == exportQueryKey {
			format = string(value)
			return
		}
		filters[string(key)] = string(value)
	})
	return filters, format
}
