package processor_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	appepisode "github.com/narwhalmedia/episodes/internal/application/episode"
	"github.com/narwhalmedia/episodes/internal/config"
	"github.com/narwhalmedia/episodes/internal/domain/episode"
	"github.com/narwhalmedia/episodes/internal/domain/events"
	infraevents "github.com/narwhalmedia/episodes/internal/infrastructure/events"
	gormstore "github.com/narwhalmedia/episodes/internal/infrastructure/persistence/gorm"
	"github.com/narwhalmedia/episodes/internal/processor"
	"github.com/narwhalmedia/episodes/internal/search"
	apperrors "github.com/narwhalmedia/episodes/pkg/errors"
	"github.com/narwhalmedia/episodes/pkg/retry"
	"github.com/narwhalmedia/episodes/test/testutil"
)

// instantTimer fires immediately and remembers every requested delay
type instantTimer struct {
	mu     sync.Mutex
	delays []time.Duration
	c      chan time.Time
}

func (t *instantTimer) Start(d time.Duration) {
	t.mu.Lock()
	t.delays = append(t.delays, d)
	t.mu.Unlock()
	t.c <- time.Now()
}

func (t *instantTimer) Stop() {}

func (t *instantTimer) C() <-chan time.Time { return t.c }

func (t *instantTimer) Delays() []time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]time.Duration(nil), t.delays...)
}

// flakyRepository fails the first Load calls with a transient error
type flakyRepository struct {
	episode.Repository
	mu       sync.Mutex
	failures int
	loads    int
}

func (r *flakyRepository) Load(ctx context.Context, id int64) (*episode.Episode, error) {
	r.mu.Lock()
	r.loads++
	fail := r.loads <= r.failures
	r.mu.Unlock()
	if fail {
		return nil, apperrors.Failure("Database.QueryFailed", "connection reset", errors.New("EOF"))
	}
	return r.Repository.Load(ctx, id)
}

type ProcessorTestSuite struct {
	suite.Suite
	ctx       context.Context
	logger    *zap.Logger
	repo      *flakyRepository
	uow       *gormstore.UnitOfWork
	index     *testutil.MockIndex
	storage   *testutil.MockBlobStorage
	publisher *testutil.MockIntegrationPublisher
	timer     *instantTimer
	episodes  *appepisode.ApplicationService
	processor *processor.Processor
	cfg       config.ProcessorConfig
	dispatch  *infraevents.InMemoryDomainEventDispatcher
}

func TestProcessorTestSuite(t *testing.T) {
	suite.Run(t, new(ProcessorTestSuite))
}

func (suite *ProcessorTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.logger = zaptest.NewLogger(suite.T())
	db := gormstore.NewTestDB(suite.T())

	suite.repo = &flakyRepository{Repository: gormstore.NewEpisodeRepository(db)}
	suite.uow = gormstore.NewUnitOfWork(db)
	suite.index = new(testutil.MockIndex)
	suite.storage = new(testutil.MockBlobStorage)
	suite.publisher = new(testutil.MockIntegrationPublisher)
	suite.timer = &instantTimer{c: make(chan time.Time, 1)}

	suite.dispatch = infraevents.NewInMemoryDomainEventDispatcher(suite.logger)
	appepisode.NewSubscribers(
		suite.repo,
		suite.publisher,
		search.NewService(suite.index, suite.logger),
		suite.storage,
		appepisode.Queues{Import: "episode-import", Processor: "episode-processor", Updates: "episode-updates"},
		suite.logger,
	).Register(suite.dispatch)

	suite.episodes = appepisode.NewApplicationService(suite.repo, suite.uow, suite.dispatch, suite.storage, suite.logger)

	suite.cfg = config.Defaults("processor").Processor
	suite.cfg.EnableDetailedLogging = true
	suite.processor = suite.newProcessor(suite.logger)
}

func (suite *ProcessorTestSuite) newProcessor(logger *zap.Logger) *processor.Processor {
	executor := retry.NewExecutor(suite.cfg.RetryConfig(), logger,
		retry.WithTimer(func() backoff.Timer { return suite.timer }))
	p, err := processor.NewProcessor(suite.cfg, suite.repo, suite.uow, suite.dispatch,
		search.NewService(suite.index, logger), executor, logger)
	suite.Require().NoError(err)
	return p
}

func (suite *ProcessorTestSuite) TearDownTest() {
	suite.index.AssertExpectations(suite.T())
	suite.publisher.AssertExpectations(suite.T())
	suite.storage.AssertExpectations(suite.T())
}

func (suite *ProcessorTestSuite) createEpisode(title, format string) appepisode.EpisodeDTO {
	suite.storage.On("GenerateUploadURL", mock.Anything, mock.Anything, mock.Anything).
		Return("https://storage.local/upload", nil).Once()
	result, err := suite.episodes.Create(suite.ctx, appepisode.CreateEpisodeCommand{
		Title:           title,
		Category:        "Technology",
		Format:          format,
		DurationSeconds: 120,
	})
	suite.Require().NoError(err)
	return result.Episode
}

func documentFor(id int64, status string) any {
	return mock.MatchedBy(func(docs []search.Document) bool {
		return len(docs) == 1 && docs[0].ID == search.DocumentID(id) && docs[0].Status == status
	})
}

func (suite *ProcessorTestSuite) TestUploadLifecycle() {
	// Arrange
	created := suite.createEpisode("Ep1", "mp4")
	require.Equal(suite.T(), "PendingUpload", created.Status)
	require.Equal(suite.T(), fmt.Sprintf("/%d.mp4", created.ID), created.BlobPath)

	notification := []byte(fmt.Sprintf(`{"uri":"episodes/%d.mp4","size":1000}`, created.ID))
	suite.publisher.On("Publish", mock.Anything, "episode-updates", mock.MatchedBy(func(e *events.IntegrationEvent) bool {
		return e.EventType == appepisode.EpisodeStatusChanged && e.AggregateID == created.ID
	})).Return(nil).Once()
	suite.index.On("Upsert", mock.Anything, documentFor(created.ID, "Ready")).Return(nil).Times(3)

	// Act
	firstErr := suite.processor.HandleNotification(suite.ctx, notification)
	afterFirst, loadErr := suite.repo.Load(suite.ctx, created.ID)
	secondErr := suite.processor.HandleNotification(suite.ctx, notification)

	// Assert
	require.NoError(suite.T(), firstErr)
	require.NoError(suite.T(), loadErr)
	require.NoError(suite.T(), secondErr)
	assert.Equal(suite.T(), episode.StatusReady, afterFirst.Status())

	final, err := suite.repo.Load(suite.ctx, created.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), episode.StatusReady, final.Status())
	assert.Equal(suite.T(), afterFirst.Version(), final.Version())
}

func (suite *ProcessorTestSuite) TestProcessUpload_Outcomes() {
	// Arrange
	created := suite.createEpisode("Ep1", "mp3")
	uri := fmt.Sprintf("https://episodes.s3.us-east-1.amazonaws.com/EPISODES/%d.MP3", created.ID)
	suite.publisher.On("Publish", mock.Anything, "episode-updates", mock.Anything).Return(nil).Once()
	suite.index.On("Upsert", mock.Anything, documentFor(created.ID, "Ready")).Return(nil).Times(3)

	// Act
	first, err1 := suite.processor.ProcessUpload(suite.ctx, uri, 2048)
	second, err2 := suite.processor.ProcessUpload(suite.ctx, uri, 2048)

	// Assert
	require.NoError(suite.T(), err1)
	require.NoError(suite.T(), err2)
	assert.Equal(suite.T(), processor.OutcomeCompleted, first)
	assert.Equal(suite.T(), processor.OutcomeAlreadyReady, second)
}

func (suite *ProcessorTestSuite) TestProcessUpload_IgnoresForeignPaths() {
	for _, uri := range []string{"thumbnails/1.jpg", "episodes/1.wav", "archive/episodes/1.mp4", ""} {
		outcome, err := suite.processor.ProcessUpload(suite.ctx, uri, 10)

		assert.NoError(suite.T(), err, uri)
		assert.Equal(suite.T(), processor.OutcomeIgnored, outcome, uri)
	}
	suite.index.AssertNotCalled(suite.T(), "Upsert", mock.Anything, mock.Anything)
}

func (suite *ProcessorTestSuite) TestProcessUpload_InvalidID() {
	for _, uri := range []string{"episodes/0.mp4", "episodes/99999999999999999999.mp4"} {
		_, err := suite.processor.ProcessUpload(suite.ctx, uri, 10)

		assert.ErrorIs(suite.T(), err, episode.ErrInvalidID, uri)
		assert.False(suite.T(), apperrors.Retryable(err))
	}
}

func (suite *ProcessorTestSuite) TestProcessUpload_NotFoundIsNotRetried() {
	// Act
	_, err := suite.processor.ProcessUpload(suite.ctx, "episodes/404.mp4", 10)

	// Assert
	assert.ErrorIs(suite.T(), err, episode.ErrNotFound)
	assert.Equal(suite.T(), 1, suite.repo.loads)
	assert.Empty(suite.T(), suite.timer.Delays())
}

func (suite *ProcessorTestSuite) TestProcessUpload_DeletingEpisodeIsRejected() {
	// Arrange
	created := suite.createEpisode("Ep1", "mp4")
	suite.publisher.On("Publish", mock.Anything, "episode-processor", mock.Anything).Return(nil).Once()
	suite.index.On("Delete", mock.Anything, []string{search.DocumentID(created.ID)}).Return(nil).Once()
	suite.storage.On("Delete", mock.Anything, created.BlobPath).Return(nil).Once()
	require.NoError(suite.T(), suite.episodes.Delete(suite.ctx, created.ID))
	loadsBefore := suite.repo.loads

	// Act
	_, err := suite.processor.ProcessUpload(suite.ctx, fmt.Sprintf("episodes/%d.mp4", created.ID), 10)

	// Assert
	assert.ErrorIs(suite.T(), err, episode.ErrInvalidTransition)
	assert.Equal(suite.T(), loadsBefore+1, suite.repo.loads)
}

func (suite *ProcessorTestSuite) TestProcessUpload_RetriesTransientFailures() {
	// Arrange
	created := suite.createEpisode("Ep1", "mp4")
	suite.repo.failures = suite.repo.loads + 2
	suite.publisher.On("Publish", mock.Anything, "episode-updates", mock.Anything).Return(nil).Once()
	suite.index.On("Upsert", mock.Anything, documentFor(created.ID, "Ready")).Return(nil).Twice()

	// Act
	outcome, err := suite.processor.ProcessUpload(suite.ctx, fmt.Sprintf("episodes/%d.mp4", created.ID), 10)

	// Assert
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), processor.OutcomeCompleted, outcome)
	assert.Equal(suite.T(), []time.Duration{5 * time.Second, 10 * time.Second}, suite.timer.Delays())
}

func (suite *ProcessorTestSuite) TestProcessUpload_ReturnsLastErrorWhenExhausted() {
	// Arrange
	created := suite.createEpisode("Ep1", "mp4")
	suite.repo.failures = suite.repo.loads + 10

	// Act
	_, err := suite.processor.ProcessUpload(suite.ctx, fmt.Sprintf("episodes/%d.mp4", created.ID), 10)

	// Assert
	assert.True(suite.T(), apperrors.IsFailure(err))
	assert.Equal(suite.T(), "Database.QueryFailed", apperrors.CodeOf(err))
	assert.Len(suite.T(), suite.timer.Delays(), 2)
}

func (suite *ProcessorTestSuite) TestProcessUpload_IndexFailureDoesNotFail() {
	// Arrange
	created := suite.createEpisode("Ep1", "mp4")
	suite.publisher.On("Publish", mock.Anything, "episode-updates", mock.Anything).Return(nil).Once()
	suite.index.On("Upsert", mock.Anything, mock.Anything).
		Return(apperrors.Failure("Search.IndexError", "failed to index 1 of 1 documents", nil)).Twice()

	// Act
	outcome, err := suite.processor.ProcessUpload(suite.ctx, fmt.Sprintf("episodes/%d.mp4", created.ID), 10)

	// Assert
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), processor.OutcomeCompleted, outcome)
	stored, err := suite.repo.Load(suite.ctx, created.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), episode.StatusReady, stored.Status())
}

func (suite *ProcessorTestSuite) TestProcessUpload_CancellationIsLogged() {
	// Arrange
	core, logs := observer.New(zapcore.WarnLevel)
	p := suite.newProcessor(zap.New(core))
	created := suite.createEpisode("Ep1", "mp4")
	ctx, cancel := context.WithCancel(suite.ctx)
	cancel()

	// Act
	_, err := p.ProcessUpload(ctx, fmt.Sprintf("episodes/%d.mp4", created.ID), 10)

	// Assert
	assert.ErrorIs(suite.T(), err, context.Canceled)
	entries := logs.FilterMessage("upload processing aborted").All()
	require.Len(suite.T(), entries, 1)
	assert.Equal(suite.T(), created.ID, entries[0].ContextMap()["episode_id"])

	stored, err := suite.repo.Load(suite.ctx, created.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), episode.StatusPendingUpload, stored.Status())
}

func (suite *ProcessorTestSuite) TestHandleNotification_S3Records() {
	// Arrange
	created := suite.createEpisode("Ep1", "mp4")
	payload := fmt.Sprintf(`{"Records":[
		{"eventName":"ObjectRemoved:Delete","s3":{"object":{"key":"episodes/%[1]d.mp4","size":0}}},
		{"eventName":"ObjectCreated:Put","s3":{"object":{"key":"episodes/%[1]d.mp4","size":1000}}}
	]}`, created.ID)
	suite.publisher.On("Publish", mock.Anything, "episode-updates", mock.Anything).Return(nil).Once()
	suite.index.On("Upsert", mock.Anything, documentFor(created.ID, "Ready")).Return(nil).Twice()

	// Act
	err := suite.processor.HandleNotification(suite.ctx, []byte(payload))

	// Assert
	require.NoError(suite.T(), err)
}

func (suite *ProcessorTestSuite) TestHandleNotification_Malformed() {
	err := suite.processor.HandleNotification(suite.ctx, []byte(`not json`))

	assert.ErrorIs(suite.T(), err, processor.ErrInvalidNotification)
	assert.True(suite.T(), apperrors.IsValidation(err))
}

func TestNewProcessor_RejectsPatternWithoutCapture(t *testing.T) {
	cfg := config.Defaults("processor").Processor
	cfg.BlobPathPattern = `^episodes/\d+\.mp4$`

	_, err := processor.NewProcessor(cfg, nil, nil, nil, nil, nil, zap.NewNop())

	assert.Error(t, err)
}
