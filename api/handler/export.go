package handler

import (
	"fmt"
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

const exportsPath = "/api/v1/exports/"

type ExportHandler struct {
	baseHandler
	reports *reportUC.UseCase
	exports *exportUC.UseCase
}

func NewExportHandler(reports *reportUC.UseCase, exports *exportUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{
		baseHandler: newBaseHandler(adapter, logger),
		reports:     reports,
		exports:     exports,
	}
}

// @Summary Run a report and store it as a document
// @Tags exports
// @Router /api/v1/exports [post]
func (h *ExportHandler) Create(ctx *fasthttp.RequestCtx) {
	viewer, ok := h.viewer(ctx)
	if !ok {
		return
	}
	var req transport.ExportRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.ReportName == "" || req.Format == "" {
		h.respondInvalid(ctx, "report_name and format are required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	// Reject the format before paying for the aggregation.
	if _, err := exportUC.ParseFormat(req.Format); err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	rep, err := h.reports.Run(stdCtx, req.ReportName, req.Filters, viewer)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	doc, err := h.exports.Export(stdCtx, rep, req.Format)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, exportResponse(doc))
}

// @Summary Download an exported document
// @Tags exports
// @Router /api/v1/exports/{id} [get]
func (h *ExportHandler) Download(ctx *fasthttp.RequestCtx) {
	viewer, ok := h.viewer(ctx)
	if !ok {
		return
	}
	id, _ := ctx.UserValue("id").(string)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	doc, err := h.exports.Get(stdCtx, id, viewer)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	ctx.Response.Header.SetContentType(doc.ContentType)
	ctx.Response.Header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	ctx.SetStatusCode(http.StatusOK)
	ctx.SetBody(doc.Content)
}

func exportResponse(doc *domain.ExportedDocument) *transport.ExportResponse {
	if doc == nil {
		return nil
	}
	return &transport.ExportResponse{Document: doc, DownloadURL: exportsPath + doc.ID}
}
