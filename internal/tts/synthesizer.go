package tts

import "context"

// Status es el resultado etiquetado de un intento de síntesis. Mantener el
// audio y el desenlace en un solo valor evita que el contador de uso se
// desincronice del resultado real.
type Status string

const (
	StatusSynthesized Status = "synthesized"
	StatusSkipped     Status = "skipped"
	StatusFailed      Status = "failed"
)

// Result agrupa el desenlace de la síntesis. Audio viene en base64 y solo
// está presente cuando Status es StatusSynthesized.
type Result struct {
	Status Status
	Audio  string
	Err    error
}

func Synthesized(audio string) Result { return Result{Status: StatusSynthesized, Audio: audio} }
func Skipped() Result                 { return Result{Status: StatusSkipped} }
func Failed(err error) Result         { return Result{Status: StatusFailed, Err: err} }

// Synthesizer define la interfaz de texto-a-voz. Es best-effort: las
// implementaciones devuelven Failed en lugar de propagar errores, porque una
// caída del proveedor de voz nunca debe tumbar la conversación de texto.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) Result
}

// Disabled siempre devuelve Skipped; se usa cuando el proveedor no está configurado.
type Disabled struct {
	Reason string
}

func NewDisabled(reason string) *Disabled {
	return &Disabled{Reason: reason}
}

func (d *Disabled) Synthesize(_ context.Context, _ string) Result {
	return Skipped()
}
