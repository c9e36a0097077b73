package gatt

import (
	"context"
	"time"

	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
	"github.com/pkg/errors"

	"github.com/gattscope/gattscope/pkg/util"
)

type coreMethods interface {
	SetDefaultDevice(time.Duration) error
	Scan(context.Context, ble.AdvHandler) error
	Dial(context.Context, ble.Addr) (ble.Client, error)
}

type realCoreMethods struct{}

func (bc *realCoreMethods) SetDefaultDevice(timeout time.Duration) error {
	var device ble.Device
	// linux.NewDevice can hang on a wedged HCI socket, so it gets a deadline.
	err := util.Timeout(func() error {
		return util.CatchErrs(func() error {
			d, e := linux.NewDevice(ble.OptDialerTimeout(timeout))
			device = d
			return e
		})
	}, timeout)
	if err != nil {
		return errors.Wrap(err, "NewDevice issue")
	}
	ble.SetDefaultDevice(device)
	return nil
}

func (bc *realCoreMethods) Scan(ctx context.Context, h ble.AdvHandler) error {
	return util.CatchErrs(func() error {
		return ble.Scan(ctx, true, h, nil)
	})
}

func (bc *realCoreMethods) Dial(ctx context.Context, addr ble.Addr) (ble.Client, error) {
	var client ble.Client
	err := util.CatchErrs(func() error {
		c, e := ble.Dial(ctx, addr)
		client = c
		return e
	})
	return client, err
}
