// Package libnfc implements target.Transport against a real
// libnfc-supported reader, using github.com/clausecker/nfc/v2.
//
// libnfc's transceive call is blocking, so Driver bridges it into the
// async callback contract target.Transport demands by running every
// Transmit on a single worker goroutine: requests are serialized
// through a channel and their callbacks fire from that goroutine,
// never concurrently with each other, confining a Target's state to
// a single executor.
package libnfc

import (
	"errors"
	"fmt"

	"github.com/clausecker/nfc/v2"

	"github.com/nfc-tools/nfctype4core/target"
)

// Option configures a Driver at construction time.
type Option func(*Driver)

// WithDeviceIndex selects which libnfc-detected device to open (0 by
// default, the first one).
func WithDeviceIndex(i int) Option {
	return func(d *Driver) { d.deviceIndex = i }
}

// WithModulation overrides the polling modulation (ISO14443A/212kbps
// by default, matching Type 4A tags).
func WithModulation(m nfc.Modulation) Option {
	return func(d *Driver) { d.modulation = m }
}

type txRequest struct {
	data       []byte
	onResponse func(target.Status, []byte)
	onDestroy  func()
}

// Driver is a target.Transport backed by one open libnfc device with
// one selected passive target.
type Driver struct {
	deviceIndex int
	modulation  nfc.Modulation

	device nfc.Device
	tgt    nfc.Target

	requests chan txRequest
	nextID   uint32
}

// Open detects libnfc devices, opens the one at deviceIndex, puts it
// in initiator mode, and selects the first passive target it finds.
// The returned Target is ready for the Type 4 init dialogue.
func Open(opts ...Option) (*target.Target, error) {
	d := &Driver{
		modulation: nfc.Modulation{Type: nfc.ISO14443a, BaudRate: nfc.Nbr212},
		requests:   make(chan txRequest),
	}
	for _, o := range opts {
		o(d)
	}

	devices, err := nfc.ListDevices()
	if err != nil {
		return nil, fmt.Errorf("libnfc: list devices: %w", err)
	}
	if len(devices) == 0 {
		return nil, errors.New("libnfc: no devices detected")
	}
	if d.deviceIndex >= len(devices) {
		return nil, fmt.Errorf("libnfc: no device at index %d", d.deviceIndex)
	}

	dev, err := nfc.Open(devices[d.deviceIndex])
	if err != nil {
		return nil, fmt.Errorf("libnfc: open %s: %w", devices[d.deviceIndex], err)
	}
	d.device = dev

	if err := d.device.InitiatorInit(); err != nil {
		d.device.Close()
		return nil, fmt.Errorf("libnfc: initiator init: %w", err)
	}

	targets, err := d.device.InitiatorListPassiveTargets(d.modulation)
	if err != nil {
		d.device.Close()
		return nil, fmt.Errorf("libnfc: list passive targets: %w", err)
	}
	if len(targets) == 0 {
		d.device.Close()
		return nil, errors.New("libnfc: no target detected")
	}
	d.tgt = targets[0]

	if _, err := d.device.InitiatorSelectPassiveTarget(d.modulation, nil); err != nil {
		d.device.Close()
		return nil, fmt.Errorf("libnfc: select passive target: %w", err)
	}

	go d.run()

	return target.NewTarget(target.TechA, target.ProtoISODEPA, true, d), nil
}

// run is the single goroutine every Transmit is serialized through.
func (d *Driver) run() {
	for req := range d.requests {
		rx := make([]byte, 65536)
		n, err := d.device.InitiatorTransceiveBytes(req.data, rx, -1)
		if err != nil {
			if req.onResponse != nil {
				req.onResponse(target.StatusIOError, nil)
			}
		} else if req.onResponse != nil {
			req.onResponse(target.StatusOK, rx[:n])
		}
		if req.onDestroy != nil {
			req.onDestroy()
		}
	}
}

// Transmit enqueues a transceive on the worker goroutine.
func (d *Driver) Transmit(data []byte, seq *target.Sequence, onResponse func(target.Status, []byte), onDestroy func()) uint32 {
	d.nextID++
	id := d.nextID
	d.requests <- txRequest{data: append([]byte(nil), data...), onResponse: onResponse, onDestroy: onDestroy}
	return id
}

// Cancel is a no-op: libnfc's transceive call has no mid-flight
// cancellation primitive; the worker simply finishes the call and
// still invokes onDestroy.
func (d *Driver) Cancel(id uint32) {}

// Reactivate deselects and reselects the target, restoring its
// power-on default application selection.
func (d *Driver) Reactivate(seq *target.Sequence, onComplete func(target.ReactivateStatus)) bool {
	go func() {
		if err := d.device.InitiatorDeselectTarget(); err != nil {
			if onComplete != nil {
				onComplete(target.ReactivateErr)
			}
			return
		}
		if _, err := d.device.InitiatorSelectPassiveTarget(d.modulation, nil); err != nil {
			if onComplete != nil {
				onComplete(target.ReactivateErr)
			}
			return
		}
		if onComplete != nil {
			onComplete(target.ReactivateDone)
		}
	}()
	return true
}

// Close shuts the worker goroutine down and releases the device.
func (d *Driver) Close() {
	close(d.requests)
	d.device.Close()
}
