// Package server exposes the reconciliation pipeline over HTTP: upload the
// invoice archive and the ledger report, run, fetch the classification and
// download the validation workbook. The last run is kept in memory only;
// nothing survives a restart.
package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/validanfse/validanfse/internal/common"
	"github.com/validanfse/validanfse/internal/pipeline"
	"github.com/validanfse/validanfse/internal/reconcile"
)

type Handler struct {
	proc      *pipeline.Processor
	uploadDir string
	logger    *slog.Logger

	mu       sync.Mutex
	last     *reconcile.RunResult
	workbook []byte
}

func NewHandler(proc *pipeline.Processor, uploadDir string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{proc: proc, uploadDir: uploadDir, logger: logger}
}

// Register wires the routes onto the router.
func (h *Handler) Register(r *gin.Engine) {
	r.POST("/nf-comparador", h.handleReconcile)
	r.GET("/nf-comparador", h.handleLastRun)
	r.GET("/relatorio-nf", h.handleDownloadReport)
}

func (h *Handler) handleReconcile(c *gin.Context) {
	archiveHeader, err := c.FormFile("zip_file")
	if err != nil {
		Error(c, http.StatusBadRequest, "Arquivo compactado das notas (zip_file) não encontrado ou inválido")
		return
	}
	ledgerHeader, err := c.FormFile("relatorio_pdf")
	if err != nil {
		Error(c, http.StatusBadRequest, "Relatório em PDF (relatorio_pdf) não encontrado ou inválido")
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		Error(c, http.StatusInternalServerError, "Não foi possível preparar o diretório de uploads", err.Error())
		return
	}
	// concurrent uploads must not overwrite each other's files
	reqDir, err := os.MkdirTemp(h.uploadDir, "run-*")
	if err != nil {
		Error(c, http.StatusInternalServerError, "Não foi possível preparar o diretório de uploads", err.Error())
		return
	}
	defer func() {
		if rerr := os.RemoveAll(reqDir); rerr != nil {
			h.logger.Warn("remove upload dir", "dir", reqDir, "error", rerr)
		}
	}()

	archivePath := filepath.Join(reqDir, filepath.Base(archiveHeader.Filename))
	ledgerPath := filepath.Join(reqDir, filepath.Base(ledgerHeader.Filename))
	if err := c.SaveUploadedFile(archiveHeader, archivePath); err != nil {
		Error(c, http.StatusInternalServerError, "Não foi possível salvar o arquivo compactado", err.Error())
		return
	}
	if err := c.SaveUploadedFile(ledgerHeader, ledgerPath); err != nil {
		Error(c, http.StatusInternalServerError, "Não foi possível salvar o relatório", err.Error())
		return
	}

	res, workbook, err := h.proc.Run(c.Request.Context(), archivePath, ledgerPath)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, common.ErrStructural) {
			status = http.StatusUnprocessableEntity
		}
		Error(c, status, "Erro ao processar a comparação", err.Error())
		return
	}

	h.mu.Lock()
	h.last = &res
	h.workbook = workbook
	h.mu.Unlock()

	Success(c, res, fmt.Sprintf("Comparação concluída: %d encontradas, %d divergentes, %d não encontradas, %d sem dados",
		len(res.Matched), len(res.Divergent), len(res.Unmatched), len(res.Unextracted)))
}

func (h *Handler) handleLastRun(c *gin.Context) {
	h.mu.Lock()
	last := h.last
	h.mu.Unlock()

	if last == nil {
		Error(c, http.StatusNotFound, "Nenhuma comparação executada ainda")
		return
	}
	Success(c, last, "")
}

func (h *Handler) handleDownloadReport(c *gin.Context) {
	h.mu.Lock()
	workbook := h.workbook
	h.mu.Unlock()

	if len(workbook) == 0 {
		Error(c, http.StatusNotFound, "Nenhum relatório disponível")
		return
	}
	c.Header("Content-Disposition", "attachment; filename=relatorio_validacao.xlsx")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", workbook)
}
