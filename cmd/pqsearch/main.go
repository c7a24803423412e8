// Command pqsearch runs top-k nearest-neighbor queries against a
// previously built PQTable index and writes the results in the scores
// text format.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/therealutkarshpriyadarshi/pqtable/pkg/observability"
	"github.com/therealutkarshpriyadarshi/pqtable/pkg/pqtable"
	"github.com/therealutkarshpriyadarshi/pqtable/pkg/vecio"
)

func main() {
	var (
		tableDir = flag.String("table", "", "directory containing a built table (required)")
		queries  = flag.String("queries", "", "path to query vectors (required)")
		ext      = flag.String("ext", "fvecs", "vector file format: fvecs or bvecs")
		topK     = flag.Int("k", 10, "number of results per query")
		topN     = flag.Int("top-n", -1, "limit to the first N queries (-1 for all)")
		output   = flag.String("output", "scores.txt", "path to write search results")
	)
	flag.Parse()

	log := observability.NewDefaultLogger()

	if *tableDir == "" || *queries == "" {
		fmt.Fprintln(os.Stderr, "Error: -table and -queries are required")
		flag.Usage()
		os.Exit(1)
	}

	log.Info("loading table", map[string]interface{}{"path": *tableDir})
	table, err := pqtable.Load(*tableDir)
	if err != nil {
		log.Fatal("failed to load table", map[string]interface{}{"error": err})
	}

	log.Info("reading queries", map[string]interface{}{"path": *queries})
	vecs, err := vecio.ReadTopN(*queries, *ext, *topN)
	if err != nil {
		log.Fatal("failed to read queries", map[string]interface{}{"error": err})
	}

	metrics := observability.NewMetrics()

	start := time.Now()
	scores := make([][]vecio.Score, len(vecs))
	for i, q := range vecs {
		queryStart := time.Now()
		results := table.QueryTopK(q, *topK)
		metrics.RecordSearch(time.Since(queryStart), len(results), len(results), 0)
		row := make([]vecio.Score, len(results))
		for j, r := range results {
			row[j] = vecio.Score{ID: r.ID, Dist: r.Dist}
		}
		scores[i] = row
	}
	elapsed := time.Since(start)

	log.Info("search complete", map[string]interface{}{
		"num_queries": len(vecs),
		"top_k":       *topK,
		"elapsed":     elapsed,
	})

	if err := vecio.WriteScores(*output, scores); err != nil {
		log.Fatal("failed to write scores", map[string]interface{}{"error": err})
	}
	log.Info("wrote scores", map[string]interface{}{"path": *output})
}
