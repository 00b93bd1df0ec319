package plugins

import (
	"fmt"
	"slices"

	"github.com/gekatateam/parrot/core"
)

// processors
type processorFunc func() core.Processor

var processors = make(map[string]processorFunc)

func AddProcessor(key string, p processorFunc) {
	_, exists := processors[key]
	if exists {
		panic(fmt.Errorf("duplicate processor func added: %v", key))
	}

	processors[key] = p
}

func GetProcessor(key string) (processorFunc, bool) {
	p, ok := processors[key]
	return p, ok
}

func ListProcessors() []string {
	return keys(processors)
}

// inputs
type inputFunc func() core.Input

var inputs = make(map[string]inputFunc)

func AddInput(key string, i inputFunc) {
	_, exists := inputs[key]
	if exists {
		panic(fmt.Errorf("duplicate input func added: %v", key))
	}

	inputs[key] = i
}

func GetInput(key string) (inputFunc, bool) {
	i, ok := inputs[key]
	return i, ok
}

func ListInputs() []string {
	return keys(inputs)
}

func keys[V any](m map[string]V) []string {
	k := make([]string, 0, len(m))
	for key := range m {
		k = append(k, key)
	}
	slices.Sort(k)
	return k
}
