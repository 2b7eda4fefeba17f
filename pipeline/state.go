package pipeline

import (
	"github.com/RyanBlaney/sonido-pulido/analyzer"
	"github.com/RyanBlaney/sonido-pulido/pcm"
)

// State is a step of the compile state machine.
type State string

const (
	StateGenerate     State = "generate"
	StateAnalyze      State = "analyze"
	StateRegenerate   State = "regenerate"
	StateRepair       State = "repair"
	StateHumanize     State = "humanize"
	StateMaster       State = "master"
	StateFinalAnalyze State = "final_analyze"
	StateDone         State = "done"
)

var stageStates = map[string]State{
	StageRepair:   StateRepair,
	StageHumanize: StateHumanize,
	StageMaster:   StateMaster,
}

// Each regeneration moves the seed by a prime step and adds variation.
const (
	regenerationSeedStep = 7919
	variationStep        = 0.15
)

// attempt is the loop-carried state of the regeneration loop. The best
// buffer is only replaced by a strictly better score, so bestScore never
// decreases.
type attempt struct {
	best          *pcm.Buffer
	bestReport    *analyzer.Report
	regenerations int
}

func (a attempt) offer(buf *pcm.Buffer, report *analyzer.Report) attempt {
	if a.best == nil || report.OverallScore > a.bestReport.OverallScore {
		a.best = buf
		a.bestReport = report
	}
	return a
}

func (a attempt) bestScore() float64 {
	if a.bestReport == nil {
		return 0
	}
	return a.bestReport.OverallScore
}

// next returns the parameters of the following regeneration.
func (p SynthParams) next() SynthParams {
	p.Attempt++
	p.Seed += uint64(p.Attempt) * regenerationSeedStep
	p.Variation += variationStep
	return p
}
