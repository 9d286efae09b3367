package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"jukebox/cmd"
	"jukebox/config"
	"jukebox/services"
	"jukebox/types"
	wshub "jukebox/websocket"
)

// testPollInterval is how often the test hub samples the snapshot
const testPollInterval = 20 * time.Millisecond

// testTracks is the music tree every test server scans
var testTracks = []string{
	"Test Artist/2001 - Test Album/01 - Test Song.mp3",
	"Test Artist/2001 - Test Album/02 - Test Song 2.mp3",
	"Test Artist/2003 - Second Album/01 - Opener.mp3",
	"Other Artist/1999 - Debut/01 - First.mp3",
}

// TestHelper provides utilities for testing the jukebox server
type TestHelper struct {
	Server    *httptest.Server
	MusicDir  string
	Router    *gin.Engine
	Catalog   *services.Catalog
	Sequencer services.Sequencer
	Hub       wshub.Hub
	Launcher  *testLauncher
	Mixer     *testMixer

	cancel context.CancelFunc
}

// NewTestHelper builds a catalog from a temporary music tree and serves the real router
func NewTestHelper(t *testing.T, options ...func(*config.Config)) *TestHelper {
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.CORSOrigins = nil
	for _, option := range options {
		option(cfg)
	}

	helper := &TestHelper{
		MusicDir: t.TempDir(),
		Launcher: &testLauncher{},
		Mixer:    &testMixer{},
	}
	helper.setupTestData(t)

	ctx, cancel := context.WithCancel(context.Background())
	helper.cancel = cancel

	builder := services.NewCatalogBuilder(cfg.Extensions, 2, services.NewMetadataResolver())
	catalog, err := builder.Build(ctx, helper.MusicDir)
	require.NoError(t, err)
	helper.Catalog = catalog

	helper.Sequencer = services.NewSequencer(catalog, helper.Launcher, cfg.Extensions)
	volume := services.NewVolumeController(cfg.MixerCommand, cfg.MixerControl, helper.Mixer.Run)

	helper.Hub = wshub.NewHub()
	go helper.Hub.Run(ctx)
	go helper.Hub.Watch(ctx, testPollInterval, func() types.Snapshot {
		return services.TakeSnapshot(helper.Sequencer, volume, catalog)
	})

	helper.Router = cmd.NewRouter(cfg, cmd.Dependencies{
		Catalog:   catalog,
		Sequencer: helper.Sequencer,
		Volume:    volume,
		Hub:       helper.Hub,
	})
	helper.Server = httptest.NewServer(helper.Router)

	return helper
}

// Cleanup stops the hub, the server and any running player
func (h *TestHelper) Cleanup(t *testing.T) {
	h.cancel()
	if h.Server != nil {
		h.Server.Close()
	}
	h.Sequencer.Close()
}

// setupTestData creates empty audio files in the Artist/YYYY - Album/NN - Title layout
func (h *TestHelper) setupTestData(t *testing.T) {
	for _, track := range testTracks {
		h.CreateTestFile(t, track, createMinimalMP3File())
	}

	// Entries the scan skips
	h.CreateTestFile(t, "Loose Song.mp3", createMinimalMP3File())
	h.CreateTestFile(t, "Other Artist/1999 - Debut/cover.jpg", []byte{0xFF, 0xD8})
}

// CreateTestFile creates a test file with specified content
func (h *TestHelper) CreateTestFile(t *testing.T, relativePath string, content []byte) {
	fullPath := filepath.Join(h.MusicDir, filepath.FromSlash(relativePath))

	err := os.MkdirAll(filepath.Dir(fullPath), 0755)
	require.NoError(t, err)

	err = os.WriteFile(fullPath, content, 0644)
	require.NoError(t, err)
}

// createMinimalMP3File creates an ID3 header with no audio frames
func createMinimalMP3File() []byte {
	return []byte("ID3\x03\x00\x00\x00\x00\x00\x00")
}

// MakeRequest makes an HTTP request to the test server
func (h *TestHelper) MakeRequest(t *testing.T, method, path string) *http.Response {
	req, err := http.NewRequest(method, h.Server.URL+path, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	return resp
}

// GetJSON makes a GET request and unmarshals JSON response
func (h *TestHelper) GetJSON(t *testing.T, path string, target interface{}) *http.Response {
	resp := h.MakeRequest(t, http.MethodGet, path)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close()

	if target != nil {
		err = json.Unmarshal(body, target)
		require.NoError(t, err, "body: %s", body)
	}

	return resp
}

// GetBody makes a GET request and returns the raw body
func (h *TestHelper) GetBody(t *testing.T, path string) (*http.Response, string) {
	resp := h.MakeRequest(t, http.MethodGet, path)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close()

	return resp, string(body)
}

// Control calls a control endpoint and decodes the snapshot response
func (h *TestHelper) Control(t *testing.T, path string) (int, controlResponse) {
	var response controlResponse
	resp := h.GetJSON(t, path, &response)
	return resp.StatusCode, response
}

// ConnectWebSocket connects to a WebSocket endpoint
func (h *TestHelper) ConnectWebSocket(t *testing.T, path string) *websocket.Conn {
	wsURL := "ws" + h.Server.URL[4:] + path // Replace http:// with ws://

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	return conn
}

// controlResponse mirrors the body of every control endpoint
type controlResponse struct {
	CurrentIndex  int                  `json:"currentSongIndex"`
	CurrentVolume *float64             `json:"currentVolume"`
	Status        types.PlaybackStatus `json:"status"`
	Track         *types.Track         `json:"track"`
	Error         string               `json:"error"`
}

// testLauncher stands in for mplayer; a cancelled player exits cleanly
type testLauncher struct {
	mu        sync.Mutex
	launched  []string
	processes []*testProcess
}

type testProcess struct {
	ctx  context.Context
	exit chan error
}

func (p *testProcess) Wait() error {
	select {
	case err := <-p.exit:
		return err
	case <-p.ctx.Done():
		return nil
	}
}

func (l *testLauncher) Launch(ctx context.Context, filePath string) (services.Process, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p := &testProcess{ctx: ctx, exit: make(chan error, 1)}
	l.launched = append(l.launched, filePath)
	l.processes = append(l.processes, p)
	return p, nil
}

// Launched returns the absolute paths handed to the player so far
func (l *testLauncher) Launched() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.launched...)
}

// FinishLast lets the most recent player reach the end of its file
func (l *testLauncher) FinishLast() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.processes) == 0 {
		return
	}
	select {
	case l.processes[len(l.processes)-1].exit <- nil:
	default:
	}
}

// testMixer records amixer invocations
type testMixer struct {
	mu    sync.Mutex
	calls [][]string
}

func (m *testMixer) Run(_ context.Context, name string, args ...string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, append([]string{name}, args...))
	return "", nil
}

// Calls returns the recorded mixer invocations
func (m *testMixer) Calls() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]string(nil), m.calls...)
}
