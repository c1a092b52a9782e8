package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/logger"
)

// User-facing messages.
const (
	msgUploadAccepted = "Arquivo recebido. O processamento foi iniciado em segundo plano."
	msgNotPDF         = "Tipo de arquivo inválido. Apenas PDFs são aceitos."
	msgNoFilename     = "O arquivo enviado não possui um nome válido."
	msgNoFile         = "Nenhum arquivo enviado no campo 'file'."
	msgEmptyQuestion  = "A pergunta não pode estar vazia."
	msgBadBody        = "Corpo da requisição inválido."
	msgQueryFailed    = "Ocorreu um erro ao processar sua consulta."
	msgTaskNotFound   = "Tarefa não encontrada."
	msgInternal       = "Erro interno."
)

type taskResponse struct {
	Message string `json:"message"`
	TaskID  string `json:"task_id"`
}

type queryRequest struct {
	Question string `json:"question"`
}

type queryResponse struct {
	Result   string   `json:"result"`
	Sources  []string `json:"sources"`
	Strategy string   `json:"strategy,omitempty"`
}

type taskStatus struct {
	ID        string               `json:"id"`
	State     domain.TaskState     `json:"state"`
	File      string               `json:"file"`
	Result    *domain.IngestResult `json:"result,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// writeJSON writes a JSON response with the specified status code and data.
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("writing response: %v", err)
	}
}

// writeError writes {"detail": message}.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"detail": message})
}

// handleUpload stores the uploaded PDF and queues it for ingestion.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.ports.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		// A part without a filename is parsed as a plain form value.
		if errors.Is(err, http.ErrMissingFile) && r.MultipartForm != nil && len(r.MultipartForm.Value["file"]) > 0 {
			writeError(w, http.StatusBadRequest, msgNoFilename)
			return
		}
		writeError(w, http.StatusBadRequest, msgNoFile)
		return
	}
	defer file.Close()

	if header.Header.Get("Content-Type") != "application/pdf" {
		writeError(w, http.StatusBadRequest, msgNotPDF)
		return
	}

	name := filepath.Base(filepath.Clean("/" + strings.ReplaceAll(header.Filename, `\`, "/")))
	if name == "/" || name == "." || strings.TrimSpace(name) == "" {
		writeError(w, http.StatusBadRequest, msgNoFilename)
		return
	}

	path := filepath.Join(s.ports.UploadDir, name)
	if err := saveUpload(path, file); err != nil {
		logger.Error(err, "saving upload %s", name)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	task, err := s.ports.Tasks.Submit(r.Context(), path)
	if err != nil {
		logger.Error(err, "queueing %s", name)
		_ = os.Remove(path)
		writeError(w, http.StatusServiceUnavailable, msgInternal)
		return
	}

	logger.Info("Queued %s as task %s", name, task.ID)
	writeJSON(w, http.StatusAccepted, taskResponse{Message: msgUploadAccepted, TaskID: task.ID})
}

func saveUpload(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(path)
		return err
	}
	return dst.Close()
}

// handleQuery answers a question about the ingested legislation.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, msgBadBody)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, msgEmptyQuestion)
		return
	}

	answer, err := s.ports.Query.Ask(r.Context(), req.Question)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, msgEmptyQuestion)
			return
		}
		logger.Error(err, "answering question")
		writeError(w, http.StatusInternalServerError, msgQueryFailed)
		return
	}

	sources := answer.Sources
	if sources == nil {
		sources = []string{}
	}
	writeJSON(w, http.StatusOK, queryResponse{
		Result:   answer.Text,
		Sources:  sources,
		Strategy: string(answer.Strategy),
	})
}

// handleTask reports the state of an ingestion task.
func (s *Server) handleTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.ports.Tasks.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgTaskNotFound)
			return
		}
		logger.Error(err, "loading task")
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	writeJSON(w, http.StatusOK, taskStatus{
		ID:        task.ID,
		State:     task.State,
		File:      filepath.Base(task.FilePath),
		Result:    task.Result,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "API online"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.ports.Stats.Stats(r.Context())
	if err != nil {
		logger.Error(err, "reading stats")
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
