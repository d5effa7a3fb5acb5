package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"

	"github.com/mr1hm/histotrails/internal/authoring"
	"github.com/mr1hm/histotrails/internal/models"
	"github.com/mr1hm/histotrails/internal/repository"
)

// authorEvent accepts a multipart form with the metadata as JSON in "event",
// the block list as JSON in "blocks" and one "file_<index>" part per image
// block that carries a file.
func (h *Handler) authorEvent(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit)})
			return
		}
		badRequest(c, err)
		return
	}

	var meta authoring.Metadata
	if err := json.Unmarshal([]byte(formValue(form, "event")), &meta); err != nil {
		badRequest(c, fmt.Errorf("invalid event: %w", err))
		return
	}
	var blocks []authoring.ContentBlock
	if err := json.Unmarshal([]byte(formValue(form, "blocks")), &blocks); err != nil {
		badRequest(c, fmt.Errorf("invalid blocks: %w", err))
		return
	}
	if err := attachFiles(form, blocks); err != nil {
		badRequest(c, err)
		return
	}

	// a client disconnect must not stop the run halfway
	ctx := context.WithoutCancel(c.Request.Context())
	result, err := callerFrom(c).Author.AuthorEvent(ctx, blocks, meta)
	if err != nil {
		authoringError(c, result, err)
		return
	}

	h.catalog.Invalidate()
	c.JSON(http.StatusCreated, result)
}

func formValue(form *multipart.Form, key string) string {
	if v := form.Value[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func attachFiles(form *multipart.Form, blocks []authoring.ContentBlock) error {
	for i := range blocks {
		headers := form.File["file_"+strconv.Itoa(i)]
		if len(headers) == 0 {
			continue
		}
		if blocks[i].Kind != authoring.BlockImage {
			return fmt.Errorf("file_%d: %w", i, authoring.ErrNotImageBlock)
		}

		data, err := readFormFile(headers[0])
		if err != nil {
			return fmt.Errorf("error reading file_%d: %w", i, err)
		}
		blocks[i].File = &authoring.File{Name: headers[0].Filename, Data: data}
	}
	return nil
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// authoringError reports the failed step along with whatever the run left
// behind so the caller can find a half-authored event.
func authoringError(c *gin.Context, result *authoring.Result, err error) {
	_ = c.Error(err)

	resp := gin.H{"error": err.Error()}
	status := http.StatusBadGateway

	var stepErr *authoring.StepError
	if errors.As(err, &stepErr) {
		resp["step"] = stepErr.Step
		if stepErr.Step == authoring.StepCompose {
			status = http.StatusBadRequest
		}
	}
	if errors.Is(err, authoring.ErrIdentityUnresolved) {
		resp["hint"] = "the event was created but could not be found by its marker"
	}
	if result != nil {
		resp["run"] = result
	}
	c.JSON(status, resp)
}

type listRunsQuery struct {
	Status   string    `form:"status" binding:"omitempty,oneof=running completed failed"`
	Dangling bool      `form:"dangling"`
	Since    time.Time `form:"since" time_format:"2006-01-02"`
	Limit    int       `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset   int       `form:"offset" binding:"omitempty,min=0"`
}

func (h *Handler) listRuns(c *gin.Context) {
	var q listRunsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	filter := repository.Filter{
		Limit:    20,
		Offset:   q.Offset,
		Dangling: q.Dangling,
	}
	if q.Limit > 0 {
		filter.Limit = q.Limit
	}
	if q.Status != "" {
		status := models.RunStatus(q.Status)
		filter.Status = &status
	}
	if !q.Since.IsZero() {
		filter.Since = &q.Since
	}

	runs, err := h.runs.ListRuns(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch runs"})
		return
	}
	if runs == nil {
		runs = []models.AuthoringRun{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (h *Handler) getRun(c *gin.Context) {
	run, err := h.runs.GetRun(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch run"})
		return
	}
	c.JSON(http.StatusOK, run)
}

// streamProgress sends authoring progress as server-sent events. With
// run_id set only that run is streamed and the stream ends with the run.
func (h *Handler) streamProgress(c *gin.Context) {
	runID := c.Query("run_id")

	id, ch := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(id)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	// send headers now; the first event may be a long way off
	c.Status(http.StatusOK)
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case p, ok := <-ch:
			if !ok {
				return false
			}
			if runID != "" && p.RunID != runID {
				return true
			}
			c.SSEvent("progress", p)
			finished := p.Step == authoring.StepDone || p.Status == authoring.StatusFailed
			return runID == "" || !finished
		}
	})
}
