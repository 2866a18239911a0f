// Copyright © 2024 The Qanun authors

package libtime_test

import (
	"testing"
	"time"

	"github.com/luthersystems/qanun/interp/natives/libtime"
	"github.com/luthersystems/qanun/qanuntest"
)

func TestTime(t *testing.T) {
	fixed := time.Date(2024, time.March, 7, 9, 5, 3, 500_000_000, time.UTC)
	libtime.Now = func() time.Time { return fixed }
	t.Cleanup(func() { libtime.Now = time.Now })

	qanuntest.RunTestSuite(t, qanuntest.TestSuite{
		{Name: "time", Source: `import "Time"; print(Time.time())`, Stdout: "09:05:03"},
		{Name: "date", Source: `import "Time"; print(Time.date())`, Stdout: "07-03-2024"},
		{Name: "dateAndTime", Source: `import "Time"; print(Time.dateAndTime())`, Stdout: "07-03-2024 09:05:03"},
		{Name: "now", Source: `import "Time"; print(Time.now())`, Stdout: "1709802303.5"},
		{Name: "not imported", Source: `Time.now()`, Err: "Undefined variable 'Time'."},
	})
}
