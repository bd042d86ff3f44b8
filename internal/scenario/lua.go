package scenario

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"
)

const scenarioTypeName = "scenario"

// LoadFile loads a scenario script from disk. The script must return a
// Scenario built with the registered constructor, e.g.:
//
//	local s = Scenario.new("combat smoke")
//	s:seed(42)
//	s:roll(10)
//	s:dice(3, 6)
//	return s
func LoadFile(path string) (*Scenario, error) {
	state := newState()
	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	sc, err := runChunk(state)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(sc.Name) == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return sc, nil
}

// LoadString loads a scenario script from a string, for tests and
// inline harness use.
func LoadString(script string) (*Scenario, error) {
	state := newState()
	if err := lua.LoadString(state, script); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	sc, err := runChunk(state)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(sc.Name) == "" {
		sc.Name = "inline"
	}
	return sc, nil
}

func newState() *lua.State {
	state := lua.NewState()
	lua.OpenLibraries(state)
	registerScenarioType(state)
	registerScenarioConstructor(state)
	return state
}

func runChunk(state *lua.State) (*Scenario, error) {
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}
	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("scenario script must return Scenario")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	sc, ok := ud.(*Scenario)
	if !ok || sc == nil {
		return nil, fmt.Errorf("scenario script returned invalid Scenario")
	}
	return sc, nil
}

func registerScenarioType(state *lua.State) {
	lua.NewMetaTable(state, scenarioTypeName)
	state.NewTable()
	lua.SetFunctions(state, scenarioMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)
}

func registerScenarioConstructor(state *lua.State) {
	state.NewTable()
	lua.SetFunctions(state, scenarioConstructor, 0)
	state.SetGlobal("Scenario")
}

var scenarioConstructor = []lua.RegistryFunction{
	{Name: "new", Function: scenarioNew},
}

var scenarioMethods = []lua.RegistryFunction{
	{Name: "seed", Function: scenarioSeed},
	{Name: "roll", Function: scenarioRoll},
	{Name: "die", Function: scenarioDie},
	{Name: "dice", Function: scenarioDice},
	{Name: "cosmetic", Function: scenarioCosmetic},
	{Name: "trace", Function: scenarioTrace},
	{Name: "clear_trace", Function: scenarioClearTrace},
}

func scenarioNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	sc := &Scenario{Name: name}
	state.PushUserData(sc)
	lua.SetMetaTableNamed(state, scenarioTypeName)
	return 1
}

func checkScenario(state *lua.State) *Scenario {
	ud := lua.CheckUserData(state, 1, scenarioTypeName)
	if sc, ok := ud.(*Scenario); ok && sc != nil {
		return sc
	}
	lua.ArgumentError(state, 1, "scenario expected")
	return nil
}

func scenarioSeed(state *lua.State) int {
	sc := checkScenario(state)
	value := lua.CheckInteger(state, 2)
	sc.Steps = append(sc.Steps, Step{Op: StepSeed, Seed: uint64(value)})
	return 0
}

func scenarioRoll(state *lua.State) int {
	sc := checkScenario(state)
	sides := lua.CheckInteger(state, 2)
	sc.Steps = append(sc.Steps, Step{Op: StepRoll, A: int64(sides)})
	return 0
}

func scenarioDie(state *lua.State) int {
	sc := checkScenario(state)
	sides := lua.CheckInteger(state, 2)
	sc.Steps = append(sc.Steps, Step{Op: StepDie, A: int64(sides)})
	return 0
}

func scenarioDice(state *lua.State) int {
	sc := checkScenario(state)
	count := lua.CheckInteger(state, 2)
	sides := lua.CheckInteger(state, 3)
	sc.Steps = append(sc.Steps, Step{Op: StepDice, A: int64(count), B: int64(sides)})
	return 0
}

func scenarioCosmetic(state *lua.State) int {
	sc := checkScenario(state)
	sides := lua.CheckInteger(state, 2)
	sc.Steps = append(sc.Steps, Step{Op: StepCosmetic, A: int64(sides)})
	return 0
}

func scenarioTrace(state *lua.State) int {
	sc := checkScenario(state)
	on := state.ToBoolean(2)
	op := StepTraceOff
	if on {
		op = StepTraceOn
	}
	sc.Steps = append(sc.Steps, Step{Op: op})
	return 0
}

func scenarioClearTrace(state *lua.State) int {
	sc := checkScenario(state)
	sc.Steps = append(sc.Steps, Step{Op: StepTraceClear})
	return 0
}
