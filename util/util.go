package util

import (
	"log"
	"runtime"
)

const Debug uint64 = 0

func DPrintf(level uint64, format string, a ...interface{}) {
	if level <= Debug {
		log.Printf(format, a...)
	}
}

func RoundUp(n uint64, sz uint64) uint64 {
	return (n + sz - 1) / sz
}

func Min(n uint64, m uint64) uint64 {
	if n < m {
		return n
	} else {
		return m
	}
}

func SumOverflows(x uint64, y uint64) bool {
	return x+y < x
}

// delayLoops emulates the access latency of secondary storage; 0 disables
// the emulation. Set it before any concurrent use.
var delayLoops uint64

func SetDelay(loops uint64) {
	delayLoops = loops
}

// StorageDelay spins for the configured loop count. Called on every
// logical access to "persistent" state to surface races that a purely
// in-memory run would hide.
func StorageDelay() {
	var sink uint64
	for i := uint64(0); i < delayLoops; i++ {
		sink++
	}
	runtime.KeepAlive(sink)
}
