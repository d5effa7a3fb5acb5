// Package authoring turns an ordered list of text and image blocks into a
// persisted event. The REST API only accepts a flat event plus separate media
// uploads, so authoring runs as a fixed sequence of requests: create the event
// under a unique marker, find its id, upload the images, map the uploads back
// to their blocks, render the HTML and patch the description.
//
// Text and captions are HTML-escaped when the description is rendered, so
// markup typed into a block shows up as literal text.
//
// Nothing is rolled back. A failure after the create step leaves the event
// with the marker as its description and whatever media was already uploaded.
package authoring

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mr1hm/histotrails/internal/backend"
	"github.com/mr1hm/histotrails/internal/metrics"
	"github.com/mr1hm/histotrails/internal/models"
	"github.com/mr1hm/histotrails/internal/worker"
)

type Step string

const (
	StepCompose          Step = "compose"
	StepSubmitMarker     Step = "submit_marker"
	StepResolveIdentity  Step = "resolve_identity"
	StepUploadMedia      Step = "upload_media"
	StepResolveMediaURLs Step = "resolve_media_urls"
	StepRender           Step = "render"
	StepCommit           Step = "commit"
	StepDone             Step = "done"
)

var ErrIdentityUnresolved = errors.New("cannot resolve created event")

// StepError reports the step a run stopped at. EventID is 0 when the event
// was never created.
type StepError struct {
	Step    Step
	EventID int
	Err     error
}

func (e *StepError) Error() string {
	if e.EventID == 0 {
		return fmt.Sprintf("authoring %s: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("authoring %s (event %d): %v", e.Step, e.EventID, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

type UploadError struct {
	Index         int
	CorrelationID string
	FileName      string
	Err           error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload of block %d (%s): %v", e.Index, e.FileName, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// Backend is the part of the REST API the saga needs.
type Backend interface {
	CreateEvent(ctx context.Context, e models.NewEvent) (int, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	UploadMedia(ctx context.Context, u backend.MediaUpload) (*models.Media, error)
	ListEventMedia(ctx context.Context, eventID int) ([]models.Media, error)
	UpdateEvent(ctx context.Context, id int, patch models.EventPatch) error
}

type Metadata struct {
	Title        string `json:"title" validate:"required,max=255"`
	Year         string `json:"year" validate:"max=32"`
	TimePeriodID *int   `json:"timePeriodId" validate:"omitempty,gt=0"`
	LocationID   *int   `json:"locationId" validate:"omitempty,gt=0"`
	EventTypeID  *int   `json:"eventTypeId" validate:"omitempty,gt=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (m Metadata) Validate() error {
	m.Title = strings.TrimSpace(m.Title)
	return validate.Struct(m)
}

type UploadedMedia struct {
	Index         int    `json:"index"`
	CorrelationID string `json:"cid"`
	MediaID       int    `json:"mediaId,omitempty"`
	URL           string `json:"url,omitempty"`
}

// Result describes a run. It is returned alongside an error whenever the
// event was created, so callers can see the partial state.
type Result struct {
	RunID       string          `json:"runId"`
	EventID     int             `json:"eventId"`
	Marker      string          `json:"marker"`
	Description string          `json:"description,omitempty"`
	Uploaded    []UploadedMedia `json:"uploaded"`
	Unresolved  []string        `json:"unresolved,omitempty"` // image cids rendered without a URL
}

type Options struct {
	MediaBaseURL      string
	UploadConcurrency int
	Observer          Observer
}

type Saga struct {
	backend           Backend
	mediaBaseURL      string
	uploadConcurrency int
	observer          Observer
	now               func() time.Time
}

func NewSaga(b Backend, opts Options) *Saga {
	concurrency := opts.UploadConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	observer := opts.Observer
	if observer == nil {
		observer = ObserverFunc(func(Progress) {})
	}
	return &Saga{
		backend:           b,
		mediaBaseURL:      opts.MediaBaseURL,
		uploadConcurrency: concurrency,
		observer:          observer,
		now:               time.Now,
	}
}

// WithBackend returns a saga with the same options that talks to b, so one
// configured saga can act for different callers.
func (s *Saga) WithBackend(b Backend) *Saga {
	cp := *s
	cp.backend = b
	return &cp
}

type run struct {
	saga   *Saga
	result *Result
	title  string
	total  int
}

// AuthorEvent runs the whole sequence for one event. Steps run strictly in
// order; ctx is checked between steps but a cancelled run is not cleaned up.
func (s *Saga) AuthorEvent(ctx context.Context, blocks []ContentBlock, meta Metadata) (*Result, error) {
	r := &run{
		saga:   s,
		result: &Result{RunID: uuid.NewString(), Uploaded: []UploadedMedia{}},
		title:  strings.TrimSpace(meta.Title),
	}

	blocks = prepareBlocks(blocks)
	for _, b := range blocks {
		if b.hasFile() {
			r.total++
		}
	}

	if err := r.step(ctx, StepCompose, func() error {
		if err := meta.Validate(); err != nil {
			return err
		}
		return ValidateBlocks(blocks)
	}); err != nil {
		return nil, err
	}

	r.result.Marker = s.marker()
	var createdID int
	if err := r.step(ctx, StepSubmitMarker, func() error {
		id, err := s.backend.CreateEvent(ctx, newEvent(meta, r.title, r.result.Marker))
		createdID = id
		return err
	}); err != nil {
		return nil, err
	}

	if err := r.step(ctx, StepResolveIdentity, func() error {
		if createdID > 0 {
			r.result.EventID = createdID
			return nil
		}
		id, err := s.resolveIdentity(ctx, r.result.Marker, r.title)
		r.result.EventID = id
		return err
	}); err != nil {
		// the event exists under r.result.Marker but cannot be addressed
		return r.result, err
	}

	if err := r.step(ctx, StepUploadMedia, func() error {
		return s.uploadAll(ctx, r, blocks)
	}); err != nil {
		return r.result, err
	}

	urls := make(map[string]string, len(r.result.Uploaded))
	if err := r.step(ctx, StepResolveMediaURLs, func() error {
		return s.resolveMediaURLs(ctx, r.result, urls)
	}); err != nil {
		return r.result, err
	}

	if err := r.step(ctx, StepRender, func() error {
		r.result.Description = RenderDescription(blocks, urls, s.mediaBaseURL)
		for _, b := range blocks {
			if b.Kind == BlockImage && b.CorrelationID != "" && b.hasFile() && urls[b.CorrelationID] == "" {
				r.result.Unresolved = append(r.result.Unresolved, b.CorrelationID)
			}
		}
		return nil
	}); err != nil {
		return r.result, err
	}

	if err := r.step(ctx, StepCommit, func() error {
		description := r.result.Description
		return s.backend.UpdateEvent(ctx, r.result.EventID, models.EventPatch{Description: &description})
	}); err != nil {
		return r.result, err
	}

	r.emit(StepDone, StatusCompleted, nil)
	metrics.AuthoringRuns.WithLabelValues("success", string(StepDone)).Inc()
	slog.Info("event authored", "run_id", r.result.RunID, "event_id", r.result.EventID,
		"media", len(r.result.Uploaded), "unresolved", len(r.result.Unresolved))
	return r.result, nil
}

func (r *run) step(ctx context.Context, step Step, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return r.fail(step, err)
	}

	r.emit(step, StatusStarted, nil)
	start := time.Now()
	err := fn()
	metrics.AuthoringStepDuration.WithLabelValues(string(step)).Observe(time.Since(start).Seconds())

	if err != nil {
		return r.fail(step, err)
	}
	r.emit(step, StatusCompleted, nil)
	return nil
}

func (r *run) fail(step Step, err error) error {
	stepErr := &StepError{Step: step, EventID: r.result.EventID, Err: err}
	r.emit(step, StatusFailed, stepErr)
	metrics.AuthoringRuns.WithLabelValues("failure", string(step)).Inc()
	slog.Error("authoring failed", "run_id", r.result.RunID, "step", step,
		"event_id", r.result.EventID, "marker", r.result.Marker, "error", err)
	return stepErr
}

func (r *run) emit(step Step, status Status, err error) {
	p := Progress{
		RunID:         r.result.RunID,
		Step:          step,
		Status:        status,
		Title:         r.title,
		Marker:        r.result.Marker,
		EventID:       r.result.EventID,
		MediaUploaded: len(r.result.Uploaded),
		MediaTotal:    r.total,
		At:            r.saga.now(),
	}
	if err != nil {
		p.Error = err.Error()
	}
	r.saga.observer.Observe(p)
}

func (s *Saga) marker() string {
	return fmt.Sprintf("__NEW_EVENT_%d_%s__", s.now().UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func newEvent(meta Metadata, title, marker string) models.NewEvent {
	e := models.NewEvent{
		Title:        title,
		Description:  marker,
		TimePeriodID: meta.TimePeriodID,
		LocationID:   meta.LocationID,
		EventTypeID:  meta.EventTypeID,
		IsPremium:    false,
	}
	if y := strings.TrimSpace(meta.Year); y != "" {
		e.Year = &y
	}
	return e
}

// prepareBlocks copies blocks and gives every image with a file a
// correlation id.
func prepareBlocks(in []ContentBlock) []ContentBlock {
	out := make([]ContentBlock, len(in))
	copy(out, in)
	for i := range out {
		if out[i].hasFile() && out[i].CorrelationID == "" {
			out[i].CorrelationID = NewCorrelationID()
		}
	}
	return out
}

// resolveIdentity finds the event created under marker. The lookup is not
// exclusive: two runs with the same title and marker would collide, which the
// random part of the marker makes unlikely but not impossible.
func (s *Saga) resolveIdentity(ctx context.Context, marker, title string) (int, error) {
	events, err := s.backend.ListEvents(ctx)
	if err != nil {
		return 0, err
	}
	for _, e := range events {
		if e.Description == marker && e.Title == title && e.ID > 0 {
			return e.ID, nil
		}
	}
	return 0, ErrIdentityUnresolved
}

type uploadJob struct {
	index int
	block ContentBlock
}

func (s *Saga) uploadAll(ctx context.Context, r *run, blocks []ContentBlock) error {
	var jobs []uploadJob
	for i, b := range blocks {
		if b.hasFile() {
			jobs = append(jobs, uploadJob{index: i, block: b})
		}
	}
	if len(jobs) == 0 {
		return nil
	}

	var mu sync.Mutex
	upload := func(ctx context.Context, job uploadJob) error {
		uploaded, err := s.upload(ctx, r.result.EventID, job)
		if err != nil {
			metrics.MediaUploads.WithLabelValues("failure").Inc()
			return err
		}
		metrics.MediaUploads.WithLabelValues("success").Inc()

		mu.Lock()
		defer mu.Unlock()
		r.result.Uploaded = append(r.result.Uploaded, uploaded)
		r.emit(StepUploadMedia, StatusProgress, nil)
		return nil
	}

	var err error
	if s.uploadConcurrency == 1 {
		for _, job := range jobs {
			if err = ctx.Err(); err != nil {
				break
			}
			if err = upload(ctx, job); err != nil {
				break
			}
		}
	} else {
		pool := worker.NewWorkerPool[uploadJob](s.uploadConcurrency, len(jobs), upload)
		pool.Start(ctx)
		for _, job := range jobs {
			if pool.Submit(job) != nil {
				break
			}
		}
		if err = pool.Stop(); err == nil {
			err = ctx.Err()
		}
	}

	sort.Slice(r.result.Uploaded, func(i, j int) bool {
		return r.result.Uploaded[i].Index < r.result.Uploaded[j].Index
	})
	return err
}

func (s *Saga) upload(ctx context.Context, eventID int, job uploadJob) (UploadedMedia, error) {
	b := job.block
	media, err := s.backend.UploadMedia(ctx, backend.MediaUpload{
		EventID:     eventID,
		MediaType:   models.MediaTypeImage,
		Description: TagDescription(b.Description, b.CorrelationID),
		FileName:    b.File.Name,
		Content:     bytes.NewReader(b.File.Data),
	})
	if err != nil {
		return UploadedMedia{}, &UploadError{Index: job.index, CorrelationID: b.CorrelationID, FileName: b.File.Name, Err: err}
	}

	uploaded := UploadedMedia{Index: job.index, CorrelationID: b.CorrelationID}
	if media != nil {
		uploaded.MediaID = media.ID
		uploaded.URL = media.URL
	}
	return uploaded, nil
}

// resolveMediaURLs fills urls from the upload responses and only lists the
// event's media when some upload came back without its URL.
func (s *Saga) resolveMediaURLs(ctx context.Context, result *Result, urls map[string]string) error {
	missing := false
	for _, u := range result.Uploaded {
		if u.URL != "" {
			urls[u.CorrelationID] = u.URL
		} else {
			missing = true
		}
	}
	if !missing {
		return nil
	}

	media, err := s.backend.ListEventMedia(ctx, result.EventID)
	if err != nil {
		return err
	}
	for _, m := range media {
		cid, ok := ExtractCorrelationID(m.DescriptionText())
		if !ok || m.URL == "" {
			continue
		}
		if _, seen := urls[cid]; !seen {
			urls[cid] = m.URL
		}
	}

	for i := range result.Uploaded {
		u := &result.Uploaded[i]
		if u.URL == "" {
			u.URL = urls[u.CorrelationID]
		}
	}
	return nil
}
