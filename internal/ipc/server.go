package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sort"
	"strings"
	"sync"

	"log/slog"

	"docflow/internal/api"
	"docflow/internal/daemon"
	"docflow/internal/logging"
	"docflow/internal/registry"
	"docflow/internal/stage"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Docflow", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String(logging.FieldErrorHint, "check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"),
			logging.String(logging.FieldErrorHint, "remove the socket file manually or rerun docflow stop"))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String(logging.FieldComponent, "ipc"))
}

func (s *service) Start(_ StartRequest, resp *StartResponse) error {
	s.log().Debug("daemon start requested")
	if err := s.daemon.Start(s.ctx); err != nil {
		resp.Started = false
		resp.Message = err.Error()
		return nil
	}
	resp.Started = true
	resp.Message = "daemon started"
	s.log().Info("daemon started via IPC",
		logging.String(logging.FieldEventType, "daemon_start"))
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.log().Debug("daemon stop requested")
	s.daemon.Stop()
	resp.Stopped = true
	s.log().Info("daemon stopped via IPC",
		logging.String(logging.FieldEventType, "daemon_stop"))
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	wf := api.FromStatusSummary(status.Workflow)

	resp.Running = status.Running
	resp.ActiveWorkers = wf.ActiveWorkers
	resp.DocumentStats = wf.DocumentStats
	resp.LastError = wf.LastError
	resp.LastDocument = wf.LastDocument
	resp.LockPath = status.LockFilePath
	resp.PID = os.Getpid()
	if len(wf.StageHealth) > 0 {
		resp.StageHealth = append(resp.StageHealth, wf.StageHealth...)
		sort.Slice(resp.StageHealth, func(i, j int) bool {
			return resp.StageHealth[i].Name < resp.StageHealth[j].Name
		})
	}
	return nil
}

func (s *service) Ingest(req IngestRequest, resp *IngestResponse) error {
	if strings.TrimSpace(req.Name) == "" {
		return errors.New("ingest requires a document name")
	}
	doc, err := s.daemon.Ingest(s.ctx, req.Name, req.Locator)
	if err != nil {
		return err
	}
	resp.Document = api.FromDocument(doc)
	s.log().Info("document ingested via IPC",
		logging.String(logging.FieldEventType, "document_ingest"),
		logging.String(logging.FieldDocumentID, doc.ID))
	return nil
}

func (s *service) Trigger(req TriggerRequest, resp *TriggerResponse) error {
	kind, ok := stage.ParseKind(req.Stage)
	if !ok {
		return fmt.Errorf("unknown stage %q", req.Stage)
	}
	if strings.TrimSpace(req.ID) == "" {
		return errors.New("trigger requires a document id")
	}

	doc, err := s.daemon.Trigger(s.ctx, req.ID, kind)
	if err != nil && doc == nil {
		return err
	}
	resp.Document = api.FromDocument(doc)
	if err != nil {
		// The stage ran and failed; the document is parked rather than
		// the RPC erroring out.
		resp.Failed = true
		resp.Message = err.Error()
	}
	s.log().Info("stage triggered via IPC",
		logging.String(logging.FieldEventType, "stage_trigger"),
		logging.String(logging.FieldDocumentID, req.ID),
		logging.String(logging.FieldStage, kind.String()),
		logging.Bool("failed", resp.Failed))
	return nil
}

func (s *service) List(req ListRequest, resp *ListResponse) error {
	statuses := make([]registry.Status, 0, len(req.Statuses))
	for _, status := range req.Statuses {
		parsed, ok := registry.ParseStatus(status)
		if !ok {
			continue
		}
		statuses = append(statuses, parsed)
	}
	docs, err := s.daemon.ListDocuments(s.ctx, statuses)
	if err != nil {
		return err
	}
	resp.Documents = make([]Document, 0, len(docs))
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		resp.Documents = append(resp.Documents, api.FromDocument(doc))
	}
	return nil
}

func (s *service) Describe(req DescribeRequest, resp *DescribeResponse) error {
	if strings.TrimSpace(req.ID) == "" {
		return errors.New("describe requires a document id")
	}
	doc, err := s.daemon.DescribeDocument(s.ctx, req.ID)
	if err != nil {
		return err
	}
	resp.Document = api.FromDocument(doc)
	return nil
}

func (s *service) Remove(req RemoveRequest, resp *RemoveResponse) error {
	if strings.TrimSpace(req.ID) == "" {
		return errors.New("remove requires a document id")
	}
	removed, err := s.daemon.RemoveDocument(s.ctx, req.ID)
	if err != nil {
		return err
	}
	resp.Removed = removed
	s.log().Info("document removed via IPC",
		logging.String(logging.FieldEventType, "document_remove"),
		logging.String(logging.FieldDocumentID, req.ID),
		logging.Bool("removed", removed))
	return nil
}

func (s *service) Clear(_ ClearRequest, resp *ClearResponse) error {
	removed, err := s.daemon.ClearDocuments(s.ctx)
	if err != nil {
		return err
	}
	resp.Removed = removed
	s.log().Info("registry cleared",
		logging.String(logging.FieldEventType, "registry_clear"),
		logging.Int64("removed_count", removed))
	return nil
}

func (s *service) ClearRouted(_ ClearRoutedRequest, resp *ClearRoutedResponse) error {
	removed, err := s.daemon.ClearRouted(s.ctx)
	if err != nil {
		return err
	}
	resp.Removed = removed
	s.log().Info("routed documents cleared",
		logging.String(logging.FieldEventType, "registry_clear_routed"),
		logging.Int64("removed_count", removed))
	return nil
}

func (s *service) Health(_ HealthRequest, resp *HealthResponse) error {
	health, err := s.daemon.RegistryHealth(s.ctx)
	if err != nil {
		return err
	}
	resp.Total = health.Total
	resp.Ingested = health.Ingested
	resp.Extracted = health.Extracted
	resp.Classified = health.Classified
	resp.Routed = health.Routed
	resp.Intervention = health.Intervention
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	sent, message, err := s.daemon.TestNotification(s.ctx)
	resp.Sent = sent
	resp.Message = message
	return err
}
