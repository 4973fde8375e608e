package vm

import "github.com/smolevm/go-smolevm/metrics"

var (
	opcodeCount  = metrics.NewRegisteredCounter("evm/opcodeCount", nil)
	runCounter   = metrics.NewRegisteredCounter("evm/runs", nil)
	faultCounter = metrics.NewRegisteredCounter("evm/faults", nil)
	stepMeter    = metrics.NewRegisteredMeter("evm/steps", nil)
	execTimer    = metrics.NewRegisteredTimer("evm/exec", nil)

	analysisHitMeter  = metrics.NewRegisteredMeter("evm/analysis/hit", nil)
	analysisMissMeter = metrics.NewRegisteredMeter("evm/analysis/miss", nil)
)
