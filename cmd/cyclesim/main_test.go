package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/trafficsignal/internal/app"
	"github.com/coreman2200/trafficsignal/internal/delay"
	"github.com/coreman2200/trafficsignal/internal/led"
	"github.com/coreman2200/trafficsignal/internal/traffic"
)

func TestSimulate(t *testing.T) {
	out, pins := app.SimOutputs()
	sig := traffic.New(led.New(out.Green), led.New(out.Yellow), led.New(out.Red))
	rec := &delay.Recorder{}

	require.NoError(t, simulate(sig, traffic.DefaultPattern(), rec, 3, func() {}))
	assert.Len(t, rec.Calls(), 9)
	assert.Equal(t, "[..R]", heads(pins))
}

func TestSimulateFault(t *testing.T) {
	out, pins := app.SimOutputs()
	sig := traffic.New(led.New(out.Green), led.New(out.Yellow), led.New(out.Red))
	rec := &delay.Recorder{}
	broken := errors.New("simulated driver fault")

	err := simulate(sig, traffic.DefaultPattern(), rec, 3, func() { pins[traffic.Green].Break(broken) })

	assert.ErrorIs(t, err, broken)
	assert.Len(t, rec.Calls(), 3, "second cycle fails at its first off-all")

	pins[traffic.Green].Break(nil)
	require.NoError(t, sig.Failsafe())
	assert.Equal(t, "[..R]", heads(pins))
}
