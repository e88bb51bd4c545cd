package events

// Recorder acumula los eventos generados dentro de una transacción. Se
// publican solo después del Commit, así una operación abortada no emite nada.
type Recorder struct {
	events []Event
}

// NewRecorder crea un recorder vacío.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record agrega un evento. Un Recorder nil descarta (útil en lecturas).
func (r *Recorder) Record(e Event) {
	if r == nil {
		return
	}
	r.events = append(r.events, e)
}

// Events eventos en orden de emisión.
func (r *Recorder) Events() []Event {
	if r == nil {
		return nil
	}
	return append([]Event(nil), r.events...)
}

// Reset descarta lo acumulado (p. ej. antes de reintentar una transacción).
func (r *Recorder) Reset() {
	if r != nil {
		r.events = r.events[:0]
	}
}
