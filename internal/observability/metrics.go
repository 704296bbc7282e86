package observability

type Metrics interface {
	ObserveOperation(op string, status int, durMs float64)
	ObserveHTTP(method, route string, status int, durMs float64)
	ObserveKafka(processMs float64, ok bool)
	IncConflict()
	IncDuplicate()
}

type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) ObserveOperation(string, int, float64)    {}
func (Noop) ObserveHTTP(string, string, int, float64) {}
func (Noop) ObserveKafka(float64, bool)               {}
func (Noop) IncConflict()                             {}
func (Noop) IncDuplicate()                            {}
