package engine

import (
	"errors"
	"io"
	"time"

	"github.com/GermanButtiero/reaction-time/internal/experiment"
	"github.com/m-mizutani/goerr/v2"
	"go.bug.st/serial"
	"go.uber.org/zap"
)

var ErrNoPingReply = errors.New("device did not respond to ping correctly")

// DLPIO8G drives the TTL lines of a DLP-IO8-G box. Lines are the characters
// '1'..'8'; the box sets a line on its digit and clears it on the letter
// below it on a QWERTY keyboard.
type DLPIO8G struct {
	port io.ReadWriteCloser
}

func NewDLPIO8G(device string, baudrate int) (*DLPIO8G, error) {
	mode := &serial.Mode{
		BaudRate: baudrate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, goerr.Wrap(err, "open serial port", goerr.V("device", device))
	}
	d, err := newDLP(port)
	if err != nil {
		return nil, goerr.Wrap(err, "init dlp", goerr.V("device", device))
	}
	return d, nil
}

func newDLP(port io.ReadWriteCloser) (*DLPIO8G, error) {
	d := &DLPIO8G{port: port}
	if err := d.Ping(); err != nil {
		port.Close()
		return nil, err
	}
	// Binary mode
	if _, err := port.Write([]byte{0x5C}); err != nil {
		port.Close()
		return nil, goerr.Wrap(err, "enter binary mode")
	}
	return d, nil
}

func (d *DLPIO8G) Close() error {
	if d.port == nil {
		return nil
	}
	return d.port.Close()
}

func (d *DLPIO8G) Ping() error {
	if _, err := d.port.Write([]byte{0x27}); err != nil {
		return goerr.Wrap(err, "write ping")
	}
	buf := make([]byte, 1)
	n, err := d.port.Read(buf)
	if err != nil {
		return goerr.Wrap(err, "read ping reply")
	}
	if n != 1 || buf[0] != 'Q' {
		return ErrNoPingReply
	}
	return nil
}

func (d *DLPIO8G) Set(lines string) error {
	if _, err := d.port.Write([]byte(lines)); err != nil {
		return goerr.Wrap(err, "set lines", goerr.V("lines", lines))
	}
	return nil
}

func (d *DLPIO8G) Unset(lines string) error {
	if _, err := d.port.Write(unsetCommand(lines)); err != nil {
		return goerr.Wrap(err, "unset lines", goerr.V("lines", lines))
	}
	return nil
}

func unsetCommand(lines string) []byte {
	const off = "QWERTYUI"
	cmd := []byte(lines)
	for i, c := range cmd {
		if c >= '1' && c <= '8' {
			cmd[i] = off[c-'1']
		}
	}
	return cmd
}

// Pulse raises the lines for d then lowers them.
func (d *DLPIO8G) Pulse(lines string, width time.Duration) error {
	if err := d.Set(lines); err != nil {
		return err
	}
	time.Sleep(width)
	return d.Unset(lines)
}

const (
	lineStimulus  = "1"
	lineResponse  = "2"
	linePremature = "3"
	pulseWidth    = 5 * time.Millisecond
)

// Trigger mirrors trial events on the DLP lines: line 1 is high while a
// stimulus waits for its response, line 2 pulses on a response and line 3
// on a premature one.
type Trigger struct {
	dlp    *DLPIO8G
	logger *zap.Logger
	raised bool
}

func NewTrigger(dlp *DLPIO8G, log *zap.Logger) *Trigger {
	return &Trigger{dlp: dlp, logger: log}
}

func (t *Trigger) check(err error) {
	if err != nil {
		t.logger.Warn("trigger write failed", zap.Error(err))
	}
}

func (t *Trigger) TrialStarted(experiment.Trial) {}

func (t *Trigger) StimulusOnset(experiment.Trial, time.Time) {
	t.check(t.dlp.Set(lineStimulus))
	t.raised = true
}

func (t *Trigger) Premature(experiment.Trial, time.Time) {
	t.check(t.dlp.Pulse(linePremature, pulseWidth))
}

func (t *Trigger) Response(experiment.Trial, experiment.TrialResult) {
	t.check(t.dlp.Unset(lineStimulus))
	t.raised = false
	t.check(t.dlp.Pulse(lineResponse, pulseWidth))
}

// Close lowers the stimulus line when a session ends while it is still
// high. It must run before the port is closed.
func (t *Trigger) Close() error {
	if !t.raised {
		return nil
	}
	t.raised = false
	return t.dlp.Unset(lineStimulus)
}
