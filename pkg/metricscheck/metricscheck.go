package metricscheck

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tracer-e2e/batchcheck/pkg/objstore"
	"github.com/tracer-e2e/batchcheck/pkg/outcome"
)

// Field is the metrics record key whose presence marks a captured timing.
const Field = "processing_time"

// Result is the check outcome plus how many records were fetched to reach it.
type Result struct {
	outcome.Outcome
	Scanned int
}

// Check lists prefix in bucket and fetches records in key order until one
// parses as a JSON object containing Field. A listing or fetch/parse failure
// stops the scan and yields Inconclusive. Valid JSON that is not an object is
// treated as a record without the field.
func Check(ctx context.Context, bucket objstore.Bucket, prefix string) Result {
	objects, err := bucket.List(ctx, prefix)
	if err != nil {
		return Result{Outcome: outcome.Inconclusivef(err, "list %s", prefix)}
	}
	if len(objects) == 0 {
		return Result{Outcome: outcome.Fail("no objects under %s/%s", bucket.Name(), prefix)}
	}

	scanned := 0
	for _, obj := range objects {
		data, err := objstore.ReadObject(ctx, bucket, obj.Key)
		scanned++
		if err != nil {
			return Result{Outcome: outcome.Inconclusivef(err, "fetch %s", obj.Key), Scanned: scanned}
		}

		found, err := hasField(data)
		if err != nil {
			return Result{Outcome: outcome.Inconclusivef(err, "parse %s", obj.Key), Scanned: scanned}
		}
		if found {
			return Result{Outcome: outcome.Satisfy(), Scanned: scanned}
		}
	}

	return Result{
		Outcome: outcome.Fail("none of %d objects under %s carries %q", len(objects), prefix, Field),
		Scanned: scanned,
	}
}

func hasField(data []byte) (bool, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return false, fmt.Errorf("decode json: %w", err)
	}
	record, ok := doc.(map[string]any)
	if !ok {
		return false, nil
	}
	_, found := record[Field]
	return found, nil
}
