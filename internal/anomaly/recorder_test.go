package anomaly

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockAppender struct {
	mock.Mock
}

func (m *MockAppender) Append(rec Record) error {
	args := m.Called(rec)
	return args.Error(0)
}

type MockInserter struct {
	mock.Mock
}

func (m *MockInserter) Insert(rec Record) error {
	args := m.Called(rec)
	return args.Error(0)
}

type MockForwarder struct {
	mock.Mock
}

func (m *MockForwarder) Forward(rec Record) error {
	args := m.Called(rec)
	return args.Error(0)
}

func TestRecorder_WritesBothSinks(t *testing.T) {
	sink := new(MockAppender)
	store := new(MockInserter)
	sink.On("Append", mock.Anything).Return(nil)
	store.On("Insert", mock.Anything).Return(nil)

	recorder := NewRecorder(sink, store, nil)
	recorder.Record(Record{Hostname: "web01", Label: "BAD_LOG_1"})

	sink.AssertNumberOfCalls(t, "Append", 1)
	store.AssertNumberOfCalls(t, "Insert", 1)
}

func TestRecorder_StoreFailureDoesNotBlockSink(t *testing.T) {
	sink := new(MockAppender)
	store := new(MockInserter)
	sink.On("Append", mock.Anything).Return(nil)
	store.On("Insert", mock.Anything).Return(errors.New("db unreachable"))

	recorder := NewRecorder(sink, store, nil)

	assert.NotPanics(t, func() {
		recorder.Record(Record{Hostname: "web01", Label: "BAD_LOG_1"})
	})
	sink.AssertNumberOfCalls(t, "Append", 1)
}

func TestRecorder_SinkFailureStillReachesStore(t *testing.T) {
	sink := new(MockAppender)
	store := new(MockInserter)
	sink.On("Append", mock.Anything).Return(errors.New("disk full"))
	store.On("Insert", mock.Anything).Return(nil)

	recorder := NewRecorder(sink, store, nil)
	recorder.Record(Record{Hostname: "web01", Label: "BAD_LOG_1"})

	store.AssertNumberOfCalls(t, "Insert", 1)
}

func TestRecorder_ForwarderFailureIsBestEffort(t *testing.T) {
	sink := new(MockAppender)
	store := new(MockInserter)
	forwarder := new(MockForwarder)
	sink.On("Append", mock.Anything).Return(nil)
	store.On("Insert", mock.Anything).Return(nil)
	forwarder.On("Forward", mock.Anything).Return(errors.New("graylog down"))

	recorder := NewRecorder(sink, store, forwarder)

	assert.NotPanics(t, func() {
		recorder.Record(Record{Hostname: "web01", Label: "BAD_LOG_1"})
	})
	forwarder.AssertNumberOfCalls(t, "Forward", 1)
}
