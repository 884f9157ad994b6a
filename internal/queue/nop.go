package queue

import (
	"context"

	"github.com/sirupsen/logrus"
)

var _ HeadlineQueue = (*Nop)(nil)

// Nop drops every change.
type Nop struct{}

func NewNop() *Nop {
	return &Nop{}
}

func (n *Nop) PublishChange(ctx context.Context, event *HeadlineEvent) error {
	logrus.Debugf("nop queue: %s %d", event.Type, event.HeadlineID)
	return nil
}

func (n *Nop) Close() error {
	return nil
}
