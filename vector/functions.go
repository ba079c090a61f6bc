package vector

import (
	"database/sql/driver"
	"sync"

	sqlite "modernc.org/sqlite"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterSQLFunctions registers vec_cosine and vec_dim with the sqlite
// driver. Only connections opened after the call see them.
//
// Both take embeddings in the stored text format (BLOBs holding the same text
// are accepted). vec_cosine(a, b) scores with CosineSimilarity; vec_dim(a)
// returns the number of components. A NULL or unreadable argument yields NULL.
func RegisterSQLFunctions() error {
	registerOnce.Do(func() {
		if err := sqlite.RegisterDeterministicScalarFunction("vec_cosine", 2, sqlCosine); err != nil {
			registerErr = err
			return
		}
		registerErr = sqlite.RegisterDeterministicScalarFunction("vec_dim", 1, sqlDim)
	})
	return registerErr
}

func sqlEmbedding(arg driver.Value) ([]float32, bool) {
	var text string
	switch v := arg.(type) {
	case string:
		text = v
	case []byte:
		text = string(v)
	default:
		return nil, false
	}
	vec, err := DecodeEmbedding(text)
	if err != nil {
		return nil, false
	}
	return vec, true
}

func sqlCosine(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, okA := sqlEmbedding(args[0])
	b, okB := sqlEmbedding(args[1])
	if !okA || !okB {
		return nil, nil
	}
	return CosineSimilarity(a, b), nil
}

func sqlDim(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	vec, ok := sqlEmbedding(args[0])
	if !ok {
		return nil, nil
	}
	return int64(len(vec)), nil
}
