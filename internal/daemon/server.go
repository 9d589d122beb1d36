package daemon

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"copyjob/internal/backup"
	"copyjob/internal/logger"
	"copyjob/internal/model"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type Runner interface {
	RunMany(indices []int) ([]backup.Report, error)
	RunNames(names []string) ([]backup.Report, error)
}

type JobLister interface {
	List() ([]model.Job, error)
}

type StateReader interface {
	Get(name string) (model.JobState, bool)
	All() []model.JobState
}

type LogReader interface {
	ReadDay(day time.Time) ([]model.TransferRecord, error)
}

type Server struct {
	echo    *echo.Echo
	runner  Runner
	jobs    JobLister
	states  StateReader
	logs    LogReader
	log     *zap.Logger
	port    int
	stopCh  chan struct{}
	running atomic.Bool
	wg      sync.WaitGroup

	mu         sync.Mutex
	lastRun    []backup.Report
	lastRunErr string
}

func NewServer(runner Runner, jobs JobLister, states StateReader, logs LogReader, port int, log *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:   e,
		runner: runner,
		jobs:   jobs,
		states: states,
		logs:   logs,
		log:    logger.OrNop(log),
		port:   port,
		stopCh: make(chan struct{}, 1),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/status", s.handleStatus)
	s.echo.POST("/stop", s.handleStop)

	s.echo.GET("/jobs", s.handleListJobs)
	s.echo.POST("/run", s.handleRun)

	s.echo.GET("/state", s.handleListState)
	s.echo.GET("/state/:name", s.handleGetState)

	s.echo.GET("/logs", s.handleLogs)
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() {
	go func() {
		addr := ":" + strconv.Itoa(s.port)
		s.log.Info("daemon server started",
			zap.String("addr", addr))

		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("daemon server error", zap.Error(err))
		}
	}()
}

// Stop shuts the HTTP server down and waits for an in-flight run, which
// cannot be interrupted, until ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	err := s.echo.Shutdown(ctx)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.log.Warn("shutting down with a backup run still in progress")
	}

	return err
}

func (s *Server) StopCh() <-chan struct{} {
	return s.stopCh
}

// Wait blocks until no run started through the API is in progress.
func (s *Server) Wait() {
	s.wg.Wait()
}

func (s *Server) handleStatus(c echo.Context) error {
	s.mu.Lock()
	lastRun, lastRunErr := s.lastRun, s.lastRunErr
	s.mu.Unlock()

	return c.JSON(http.StatusOK, map[string]any{
		"running":      s.running.Load(),
		"last_run":     lastRun,
		"last_run_err": lastRunErr,
		"jobs":         s.states.All(),
	})
}

func (s *Server) handleStop(c echo.Context) error {
	select {
	case s.stopCh <- struct{}{}:
	default:
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "stopping"})
}

type jobView struct {
	Index int            `json:"index"`
	Job   model.Job      `json:"job"`
	State model.JobState `json:"state"`
}

func (s *Server) handleListJobs(c echo.Context) error {
	jobs, err := s.jobs.List()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	views := make([]jobView, 0, len(jobs))
	for i, j := range jobs {
		st, ok := s.states.Get(j.Name)
		if !ok {
			st = *model.NewPendingState(j.Name)
		}
		views = append(views, jobView{Index: i + 1, Job: j, State: st})
	}

	return c.JSON(http.StatusOK, map[string]any{"jobs": views})
}

type runRequest struct {
	Indices []int    `json:"indices"`
	Names   []string `json:"names"`
}

func (s *Server) handleRun(c echo.Context) error {
	var req runRequest
	if err := c.Bind(&req); err != nil || (len(req.Indices) == 0 && len(req.Names) == 0) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "indices or names required"})
	}

	if !s.running.CompareAndSwap(false, true) {
		return c.JSON(http.StatusConflict, map[string]string{"error": "a run is already in progress"})
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Store(false)

		var (
			reports []backup.Report
			err     error
		)
		if len(req.Names) > 0 {
			reports, err = s.runner.RunNames(req.Names)
		} else {
			reports, err = s.runner.RunMany(req.Indices)
		}

		s.mu.Lock()
		s.lastRun = reports
		s.lastRunErr = ""
		if err != nil {
			s.lastRunErr = err.Error()
		}
		s.mu.Unlock()

		if err != nil {
			s.log.Error("api run failed", zap.Error(err))
		}
	}()

	return c.JSON(http.StatusAccepted, map[string]string{"status": "started"})
}

func (s *Server) handleListState(c echo.Context) error {
	return c.JSON(http.StatusOK, s.states.All())
}

func (s *Server) handleGetState(c echo.Context) error {
	st, ok := s.states.Get(c.Param("name"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}

	return c.JSON(http.StatusOK, st)
}

func (s *Server) handleLogs(c echo.Context) error {
	day := time.Now()
	if d := c.QueryParam("date"); d != "" {
		parsed, err := time.ParseInLocation("2006-01-02", d, time.Local)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid date, want YYYY-MM-DD"})
		}
		day = parsed
	}

	records, err := s.logs.ReadDay(day)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	if job := c.QueryParam("job"); job != "" {
		filtered := records[:0]
		for _, r := range records {
			if r.BackupName == job {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	return c.JSON(http.StatusOK, records)
}
