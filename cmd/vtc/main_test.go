package main

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsiec/vtc/internal/api"
	"github.com/zsiec/vtc/internal/config"
	"github.com/zsiec/vtc/internal/errors"
	"github.com/zsiec/vtc/internal/logger"
	"github.com/zsiec/vtc/internal/stamp"
	"github.com/zsiec/vtc/pkg/vtc"
)

func runArgs(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunDispatch(t *testing.T) {
	code, _, stderr := runArgs()
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Usage: vtc")

	code, _, stderr = runArgs("bogus")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, `unknown command "bogus"`)

	code, stdout, _ := runArgs("version")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "vtc ")

	code, stdout, _ = runArgs("help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "monitor")

	code, _, stderr = runArgs("convert", "-h")
	assert.Equal(t, 0, code)
	assert.Contains(t, stderr, "-rate")
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
		contains []string
	}{
		{
			name:     "timecode at 23.98",
			args:     []string{"convert", "-rate", "23.98", "01:00:00:00"},
			contains: []string{"86400", "3603.6", "18018/5", "01:00:03.6", "5400+00", "915372057600000"},
		},
		{
			name:     "frames at drop frame",
			args:     []string{"convert", "-rate", "29.97df", "-kind", "frames", "17982"},
			contains: []string{"00:10:00;00"},
		},
		{
			name:     "rebase",
			args:     []string{"convert", "-rate", "29.97df", "-kind", "frames", "-rebase", "29.97", "17982"},
			contains: []string{"00:10:00;00", "00:09:59:12"},
		},
		{
			name:     "past the int64 range",
			args:     []string{"convert", "-rate", "24", "3000000000000000:00:00:00"},
			contains: []string{"259200000000000000000", "16200000000000000000+00"},
		},
		{name: "missing value", args: []string{"convert"}, wantCode: 1},
		{name: "bad rate", args: []string{"convert", "-rate", "24df", "00:00:01:00"}, wantCode: 1},
		{name: "bad kind", args: []string{"convert", "-kind", "furlongs", "12"}, wantCode: 1},
		{name: "bad value", args: []string{"convert", "one hour"}, wantCode: 1},
		{name: "bad rebase", args: []string{"convert", "-rebase", "fast", "00:00:01:00"}, wantCode: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runArgs(tt.args...)
			require.Equal(t, tt.wantCode, code, stderr)
			for _, want := range tt.contains {
				assert.Contains(t, stdout, want)
			}
			if tt.wantCode != 0 {
				assert.Contains(t, stderr, "vtc convert:")
			}
		})
	}
}

func TestCalcRejectsBadRate(t *testing.T) {
	code, _, stderr := runArgs("calc", "-rate", "fast")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "vtc calc:")
}

func TestMonitorRejectsBadConfig(t *testing.T) {
	code, _, stderr := runArgs("monitor", "-rate", "24", "-start", "not a timecode")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "invalid stamp config")

	code, _, _ = runArgs("monitor", "-clock-rate", "0")
	assert.Equal(t, 1, code)
}

func TestFormatStamp(t *testing.T) {
	tc := vtc.MustNew(vtc.Frames(1), vtc.F24)
	line := formatStamp(stamp.Stamp{SSRC: 0xbeef, Sequence: 7, RTPTime: 3750, Timecode: tc})
	assert.Contains(t, line, "ssrc=0x0000beef")
	assert.Contains(t, line, "seq=7")
	assert.Contains(t, line, "00:00:00:01")
	assert.NotContains(t, line, "tod=")

	tod := vtc.MustNew(vtc.Text("12:00:00:00"), vtc.F24)
	line = formatStamp(stamp.Stamp{SSRC: 1, Timecode: tc, TimeOfDay: &tod})
	assert.Contains(t, line, "tod=12:00:00:00")
}

func TestQuery(t *testing.T) {
	log := logger.NewDiscard()
	handler, err := api.NewHandler(&config.TimecodeConfig{DefaultRate: "23.98", RuntimePrecision: 9}, nil, errors.NewErrorHandler(log), log)
	require.NoError(t, err)

	router := mux.NewRouter()
	handler.RegisterRoutes(router.PathPrefix("/api/v1").Subrouter())
	srv := httptest.NewServer(router)
	defer srv.Close()

	entry, err := query(srv.Client(), srv.URL+"/", api.ConvertRequest{Value: "01:00:00:00"})
	require.NoError(t, err)
	assert.Equal(t, int64(86400), entry.Frames)
	assert.Equal(t, "3603.6", entry.Seconds)

	entry, err = query(srv.Client(), srv.URL, api.ConvertRequest{
		Value: "17982",
		Kind:  api.KindFrames,
		Rate:  api.RateParam{Value: "29.97df"},
	})
	require.NoError(t, err)
	assert.Equal(t, "00:10:00;00", entry.Timecode)

	_, err = query(srv.Client(), srv.URL, api.ConvertRequest{Value: "one hour"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")

	_, err = query(srv.Client(), srv.URL+"/missing", api.ConvertRequest{Value: "1"})
	assert.Error(t, err)
}
