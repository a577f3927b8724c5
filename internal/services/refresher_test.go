package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/dialin/domain"
)

type fakeSession struct {
	err   error
	calls int
}

func (f *fakeSession) Refresh(context.Context) error {
	f.calls++
	return f.err
}

type onlineFlag bool

func (o onlineFlag) IsOnline() bool { return bool(o) }

type pendingFlag bool

func (p pendingFlag) HasPendingWrites() bool { return bool(p) }

func TestTickRefreshesWhenIdle(t *testing.T) {
	session := &fakeSession{}
	r, err := NewRefresher(session, onlineFlag(true), []WriteTracker{pendingFlag(false)}, nil, RefresherConfig{})
	require.NoError(t, err)

	refreshed, err := r.Tick(context.Background())

	require.NoError(t, err)
	assert.True(t, refreshed)
	assert.Equal(t, 1, session.calls)
}

func TestTickSkips(t *testing.T) {
	tests := []struct {
		name    string
		online  ConnectionHealth
		writers []WriteTracker
	}{
		{name: "offline", online: onlineFlag(false)},
		{name: "pending writes", online: onlineFlag(true), writers: []WriteTracker{pendingFlag(false), pendingFlag(true)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &fakeSession{}
			r, err := NewRefresher(session, tt.online, tt.writers, nil, RefresherConfig{})
			require.NoError(t, err)

			refreshed, err := r.Tick(context.Background())

			require.NoError(t, err)
			assert.False(t, refreshed)
			assert.Zero(t, session.calls)
		})
	}
}

func TestTickWithoutSessionIsNotAnError(t *testing.T) {
	r, err := NewRefresher(&fakeSession{err: domain.ErrNoSession}, nil, nil, nil, RefresherConfig{})
	require.NoError(t, err)

	refreshed, err := r.Tick(context.Background())

	assert.NoError(t, err)
	assert.False(t, refreshed)
}

func TestTickReportsLoadFailure(t *testing.T) {
	failure := errors.New("load failed")
	r, err := NewRefresher(&fakeSession{err: failure}, onlineFlag(true), nil, nil, RefresherConfig{})
	require.NoError(t, err)

	_, err = r.Tick(context.Background())

	assert.ErrorIs(t, err, failure)
}

func TestRefresherSchedule(t *testing.T) {
	_, err := NewRefresher(&fakeSession{}, nil, nil, nil, RefresherConfig{Schedule: "every now and then"})
	assert.Error(t, err)

	r, err := NewRefresher(&fakeSession{}, nil, nil, nil, RefresherConfig{Schedule: "@every 1h"})
	require.NoError(t, err)
	r.Start()
	assert.NoError(t, r.Stop(context.Background()))

	var idle *Refresher
	assert.NoError(t, idle.Stop(context.Background()))
}
