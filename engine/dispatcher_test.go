package engine

import (
	"context"
	"testing"
	"time"

	"github.com/ipcbus/ipcbus-go/message"
	"github.com/ipcbus/ipcbus-go/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObject struct {
	id          message.ObjectID
	subscribers map[string][]Session
}

func newFakeObject(id message.ObjectID) *fakeObject {
	return &fakeObject{id: id, subscribers: make(map[string][]Session)}
}

func (o *fakeObject) Name() string                    { return "fake" }
func (o *fakeObject) ObjectID() message.ObjectID       { return o.id }
func (o *fakeObject) DefaultSession() (Session, bool)  { return nil, false }

func (o *fakeObject) subscribe(filter string, s Session) {
	o.subscribers[filter] = append(o.subscribers[filter], s)
}

func (o *fakeObject) Broadcast(m *message.Message) {
	for _, s := range o.subscribers[m.Filter] {
		_ = s.Send(m)
	}
}

func (o *fakeObject) BroadcastTo(m *message.Message, session Session) {
	for _, s := range o.subscribers[m.Filter] {
		if s.ID() == session.ID() {
			_ = s.Send(m)
			return
		}
	}
}

type fakeEndpoint struct {
	id      message.EndpointID
	objects map[message.ObjectID]Object
}

func (e *fakeEndpoint) ID() message.EndpointID { return e.id }
func (e *fakeEndpoint) PreferredPeer() (Session, bool) { return nil, false }
func (e *fakeEndpoint) GetObject(id message.ObjectID) (Object, bool) {
	o, ok := e.objects[id]
	return o, ok
}

func TestDispatchBroadcastFansOutToMatchingSubscribers(t *testing.T) {
	c := NewContext()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	object := newFakeObject(1)
	endpoint := &fakeEndpoint{id: 9, objects: map[message.ObjectID]Object{1: object}}
	c.RegisterEndpoint(endpoint)

	matching := &recordingSession{loopbackSession: loopbackSession{id: 1}}
	other := &recordingSession{loopbackSession: loopbackSession{id: 2}}
	object.subscribe("topic-a", matching)
	object.subscribe("topic-b", other)

	req := &message.Message{}
	b := message.NewBroadcastFrom(req, message.Code(3), []byte("v1"), "topic-a")
	b.DestEndpoint = 9
	b.ObjectID = 1
	b.Flag |= message.FlagEndpoint

	ref := NewRef(b, nil)
	done := make(chan error, 1)
	c.enqueue(func() { done <- c.dispatch(ref, 0) })
	require.NoError(t, <-done)

	assert.Len(t, matching.sent, 1)
	assert.Empty(t, other.sent, "subscriber with a different filter must not receive the broadcast")
}

func TestDispatchBroadcastInitialResponseTargetsOneSession(t *testing.T) {
	c := NewContext()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	object := newFakeObject(1)
	endpoint := &fakeEndpoint{id: 9, objects: map[message.ObjectID]Object{1: object}}
	c.RegisterEndpoint(endpoint)

	subscriber := &recordingSession{loopbackSession: loopbackSession{id: 5}}
	object.subscribe("topic", subscriber)
	c.RegisterSession(subscriber)
	time.Sleep(time.Millisecond)

	req := &message.Message{DestEndpoint: 9, ObjectID: 1}
	assert.True(t, c.BroadcastInitialResponse(req, message.Code(4), "topic", []byte("initial"), subscriber))

	assert.Eventually(t, func() bool { return len(subscriber.sent) == 1 }, time.Second, time.Millisecond)
	assert.True(t, message.Flag(subscriber.sent[0].Flag).Has(message.FlagInitialResponse))
}

func TestUpdateSendsSubscribeRequestWithUpdateCode(t *testing.T) {
	client, server, clientSession, _ := newLoopbackPair(t)

	var gotCode message.Code
	server.SetInboundHandler(func(ref *Ref, from Session) {
		req := ref.Message()
		gotCode = req.Code
		assert.Equal(t, wire.TypeSubscribeRequest, req.Type)
		server.Reply(req, nil)
	})
	time.Sleep(time.Millisecond)

	m := message.New(wire.TypeRequest, message.Code(0), nil, 0)
	m.DestSession = clientSession.peerAs.ID()
	_, err := client.Update(context.Background(), m, time.Second)
	require.NoError(t, err)
	assert.Equal(t, message.CodeUpdate, gotCode)
}
