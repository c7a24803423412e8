package observability

import (
	"testing"
	"time"
)

func TestMetrics(t *testing.T) {
	// Create metrics once for all subtests to avoid double-registering
	// with the default Prometheus registry.
	m := NewMetrics()

	t.Run("NewMetrics", func(t *testing.T) {
		if m == nil {
			t.Fatal("NewMetrics returned nil")
		}
		if m.TrainingRuns == nil || m.TrainingDuration == nil {
			t.Error("training metrics not initialized")
		}
		if m.VectorsEncoded == nil || m.EncodeDuration == nil {
			t.Error("encode metrics not initialized")
		}
		if m.TablesBuilt == nil || m.HashTableGroups == nil {
			t.Error("build metrics not initialized")
		}
		if m.SearchesTotal == nil || m.SearchLatency == nil {
			t.Error("search metrics not initialized")
		}
	})

	t.Run("RecordTraining", func(t *testing.T) {
		m.RecordTraining(500*time.Millisecond, 3, 1234.5)
		m.RecordTraining(2*time.Second, 1, 0)
	})

	t.Run("RecordEncode", func(t *testing.T) {
		m.RecordEncode(10*time.Millisecond, 1000)
		m.RecordEncode(1*time.Second, 1_000_000)
	})

	t.Run("RecordBuild", func(t *testing.T) {
		m.RecordBuild("single", 50*time.Millisecond)
		m.RecordBuild("multi", 75*time.Millisecond)
	})

	t.Run("UpdateHashTableStats", func(t *testing.T) {
		m.UpdateHashTableStats("0", 128, 4096, 0.002)
		m.UpdateHashTableStats("1", 64, 2048, 0.001)
	})

	t.Run("RecordSearch", func(t *testing.T) {
		m.RecordSearch(2*time.Millisecond, 40, 12, 4)
		m.RecordSearch(1*time.Millisecond, 0, 1, 0)
	})

	t.Run("ConcurrentRecordSearch", func(t *testing.T) {
		done := make(chan bool, 10)
		for i := 0; i < 10; i++ {
			go func(n int) {
				for j := 0; j < 20; j++ {
					m.RecordSearch(time.Duration(n+j)*time.Microsecond, j, j+1, j%3)
				}
				done <- true
			}(i)
		}
		for i := 0; i < 10; i++ {
			<-done
		}
	})
}
