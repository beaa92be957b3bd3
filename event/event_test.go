// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package event_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/blinklabs-io/daoledger/event"
)

func TestEventBusSingleSubscriber(t *testing.T) {
	var testEvtData int = 999
	var testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil, nil)
	_, subCh := eb.Subscribe(testEvtType)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, testEvtData))
	select {
	case evt, ok := <-subCh:
		require.True(t, ok, "event channel closed unexpectedly")
		assert.Equal(t, testEvtType, evt.Type)
		data, ok := evt.Data.(int)
		require.True(t, ok, "event data was not of expected type")
		assert.Equal(t, testEvtData, data)
	case <-time.After(1 * time.Second):
		t.Fatalf("timeout waiting for event")
	}
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	var testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil, nil)
	_, subCh1 := eb.Subscribe(testEvtType)
	_, subCh2 := eb.Subscribe(testEvtType)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, "payload"))
	for _, ch := range []<-chan event.Event{subCh1, subCh2} {
		select {
		case evt := <-ch:
			assert.Equal(t, "payload", evt.Data)
		case <-time.After(1 * time.Second):
			t.Fatalf("timeout waiting for event")
		}
	}
}

func TestEventBusOtherTypeNotDelivered(t *testing.T) {
	eb := event.NewEventBus(nil, nil)
	_, subCh := eb.Subscribe("test.a")
	eb.Publish("test.b", event.NewEvent("test.b", nil))
	select {
	case evt := <-subCh:
		t.Fatalf("received unexpected event: %+v", evt)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestEventBusUnsubscribe(t *testing.T) {
	var testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil, nil)
	subId, subCh := eb.Subscribe(testEvtType)
	eb.Unsubscribe(testEvtType, subId)
	// Unsubscribing twice is a no-op
	eb.Unsubscribe(testEvtType, subId)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 1))
	_, ok := <-subCh
	assert.False(t, ok, "expected channel to be closed")
}

func TestEventBusSubscribeFunc(t *testing.T) {
	defer goleak.VerifyNone(t)
	var testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil, nil)
	var count atomic.Int32
	done := make(chan struct{})
	eb.SubscribeFunc(testEvtType, func(evt event.Event) {
		if count.Add(1) == 3 {
			close(done)
		}
	})
	for i := range 3 {
		eb.Publish(testEvtType, event.NewEvent(testEvtType, i))
	}
	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatalf("timeout waiting for handler calls")
	}
	eb.Stop()
	// Give the handler goroutine a chance to exit before the leak check
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(3), count.Load())
}

func TestEventBusStop(t *testing.T) {
	eb := event.NewEventBus(nil, nil)
	_, subCh := eb.Subscribe("test.event")
	eb.Stop()
	_, ok := <-subCh
	assert.False(t, ok, "expected channel to be closed after Stop")
	// The bus remains usable
	_, subCh2 := eb.Subscribe("test.event")
	eb.Publish("test.event", event.NewEvent("test.event", 2))
	evt := <-subCh2
	assert.Equal(t, 2, evt.Data)
}

func TestEventBusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	eb := event.NewEventBus(reg, nil)
	subId, subCh := eb.Subscribe("test.event")
	eb.Publish("test.event", event.NewEvent("test.event", nil))
	<-subCh
	count, err := testutil.GatherAndCount(
		reg,
		"daoledger_events_published_total",
	)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	eb.Unsubscribe("test.event", subId)
}
