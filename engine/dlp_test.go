package engine

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/GermanButtiero/reaction-time/internal/experiment"
	"github.com/m-mizutani/gt"
	"go.uber.org/zap"
)

type fakePort struct {
	reply   []byte
	written bytes.Buffer
	closed  bool
}

func (p *fakePort) Read(b []byte) (int, error) {
	n := copy(b, p.reply)
	p.reply = p.reply[n:]
	return n, nil
}

func (p *fakePort) Write(b []byte) (int, error) { return p.written.Write(b) }

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func TestDLPHandshake(t *testing.T) {
	port := &fakePort{reply: []byte("Q")}
	d, err := newDLP(port)
	gt.NoError(t, err)
	gt.Equal(t, port.written.Bytes(), []byte{0x27, 0x5C})
	gt.NoError(t, d.Close())
	gt.True(t, port.closed)
}

func TestDLPHandshakeNoReply(t *testing.T) {
	port := &fakePort{reply: []byte("x")}
	_, err := newDLP(port)
	gt.True(t, errors.Is(err, ErrNoPingReply))
	gt.True(t, port.closed)
}

func TestUnsetCommand(t *testing.T) {
	gt.Equal(t, string(unsetCommand("1")), "Q")
	gt.Equal(t, string(unsetCommand("12345678")), "QWERTYUI")
	gt.Equal(t, string(unsetCommand("9")), "9")
}

func TestTrigger(t *testing.T) {
	port := &fakePort{}
	tr := NewTrigger(&DLPIO8G{port: port}, zap.NewNop())
	var obs experiment.Observer = tr

	trial := experiment.Trial{Index: 1}
	obs.TrialStarted(trial)
	obs.StimulusOnset(trial, time.Now())
	obs.Response(trial, experiment.TrialResult{Index: 1})
	obs.Premature(trial, time.Now())

	gt.Equal(t, port.written.String(), "1Q2W3E")
}

func TestTriggerCloseLowersStimulusLine(t *testing.T) {
	port := &fakePort{}
	tr := NewTrigger(&DLPIO8G{port: port}, zap.NewNop())

	trial := experiment.Trial{Index: 1}
	tr.TrialStarted(trial)
	tr.StimulusOnset(trial, time.Now())
	// The session is quit while the stimulus waits for its response.
	gt.NoError(t, tr.Close())
	gt.Equal(t, port.written.String(), "1Q")

	// Nothing left to lower.
	gt.NoError(t, tr.Close())
	gt.Equal(t, port.written.String(), "1Q")

	port.written.Reset()
	tr.StimulusOnset(trial, time.Now())
	tr.Response(trial, experiment.TrialResult{Index: 1})
	gt.NoError(t, tr.Close())
	gt.Equal(t, port.written.String(), "1Q2W")
}
