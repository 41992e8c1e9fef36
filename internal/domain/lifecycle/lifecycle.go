// Package lifecycle classifies a campaign at a point in time. Evaluate is the single
// definition of "done" shared by status rendering, pledge admission, claim and refund.
package lifecycle

type Outcome string

const (
	Active    Outcome = "ACTIVE"
	Succeeded Outcome = "SUCCEEDED"
	Failed    Outcome = "FAILED"
)

// Terms são os campos da campanha que determinam o resultado.
type Terms struct {
	Goal     uint64
	Pledged  uint64
	Deadline int64
}

// Evaluate não tem efeitos colaterais; now e Deadline são segundos unix.
func Evaluate(t Terms, now int64) Outcome {
	if now < t.Deadline {
		return Active
	}
	if t.Pledged >= t.Goal {
		return Succeeded
	}
	return Failed
}

func (o Outcome) IsFinal() bool {
	return o == Succeeded || o == Failed
}

func (o Outcome) String() string {
	return string(o)
}
