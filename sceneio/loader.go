package sceneio

import (
	"errors"

	"github.com/plus3/tessera/ecs"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

var (
	ErrEntityOutOfRange = eris.New("component record refers to an entity outside the scene")
	ErrBadEntityCount   = eris.New("negative entity count")
)

// Report summarizes a load. Problems holds one error per skipped item.
type Report struct {
	Errors   int
	Problems []error
}

// Err joins every problem, or returns nil for a clean load.
func (r Report) Err() error {
	return errors.Join(r.Problems...)
}

func (r *Report) add(err error) {
	r.Errors++
	r.Problems = append(r.Problems, err)
}

// Loader builds scenes from SceneModels. Anything it cannot resolve or decode
// is logged, counted in the Report and skipped; the rest of the scene still loads.
type Loader struct {
	Components *ecs.ComponentRegistry
	Systems    *ecs.SystemRegistry
	Logger     *zap.Logger

	// SceneOptions are passed to ecs.NewScene after the name and logger options.
	SceneOptions []ecs.SceneOption
	// NoStart leaves the loaded scene stopped.
	NoStart bool
}

// Load creates the scene described by model and, unless NoStart is set, starts it.
func (l Loader) Load(model ecs.SceneModel) (*ecs.Scene, Report) {
	base := l.Logger
	if base == nil {
		base = zap.NewNop()
	}
	log := base.With(zap.String("scene", model.Name))

	var report Report
	fail := func(msg string, err error, fields ...zap.Field) {
		log.Warn(msg, append(fields, zap.Error(err))...)
		report.add(err)
	}

	if model.FormatVersion != "" && model.FormatVersion != ecs.FormatVersion {
		log.Warn("unexpected scene format version",
			zap.String("version", model.FormatVersion), zap.String("supported", ecs.FormatVersion))
	}

	opts := append([]ecs.SceneOption{ecs.WithSceneName(model.Name), ecs.WithLogger(base)}, l.SceneOptions...)
	scene := ecs.NewScene(l.Components, opts...)

	count := model.EntityCount
	if count < 0 {
		fail("ignoring entity count", eris.Wrapf(ErrBadEntityCount, "%d", count))
		count = 0
	}
	ids := make([]ecs.EntityId, count)
	for i := range ids {
		ids[i] = scene.CreateEntity()
	}

	for _, cm := range model.Components {
		l.loadComponent(scene, ids, cm, fail)
	}

	for _, gm := range model.GlobalComponents {
		if err := scene.DeserializeGlobal(gm); err != nil {
			fail("skipping global component", err, zap.String("type", gm.Type))
		}
	}

	for _, name := range model.Systems {
		if l.Systems == nil {
			fail("skipping system", eris.Wrapf(ecs.ErrUnknownSystem, "%q", name), zap.String("system", name))
			continue
		}
		system, err := l.Systems.New(name)
		if err != nil {
			fail("skipping system", err, zap.String("system", name))
			continue
		}
		if err := scene.AddSystem(system); err != nil {
			fail("skipping system", err, zap.String("system", name))
		}
	}

	if !l.NoStart {
		if err := scene.Start(); err != nil {
			fail("scene start reported errors", err)
		}
	}

	log.Info("scene loaded",
		zap.Int("entities", scene.EntityCount()),
		zap.Int("systems", len(scene.Systems())),
		zap.Int("errors", report.Errors))
	return scene, report
}

func (l Loader) loadComponent(scene *ecs.Scene, ids []ecs.EntityId, cm ecs.ComponentModel, fail func(string, error, ...zap.Field)) {
	typeField := zap.String("type", cm.Type)

	ct, ok := l.Components.Lookup(cm.Type)
	if !ok {
		fail("skipping component", eris.Wrapf(ecs.ErrComponentNotRegistered, "%q", cm.Type), typeField)
		return
	}
	store, err := scene.AttachStore(ct)
	if store == nil {
		fail("skipping component", err, typeField)
		return
	}
	if err != nil {
		fail("component attach reported errors", err, typeField)
	}

	records := make([]ecs.ComponentDataModel, 0, len(cm.Data))
	for _, record := range cm.Data {
		index := uint64(record.Entity)
		if index >= uint64(len(ids)) {
			fail("skipping component record",
				eris.Wrapf(ErrEntityOutOfRange, "%s entity %d of %d", cm.Type, index, len(ids)), typeField)
			continue
		}
		records = append(records, ecs.ComponentDataModel{Entity: ids[index], Value: record.Value})
	}

	for _, err := range unjoin(store.DeserializeAllState(records)) {
		fail("skipping component record", err, typeField)
	}
}

// unjoin splits an errors.Join result so each failure is counted once.
func unjoin(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

// Snapshot captures a scene as a SceneModel. Live entities are renumbered
// 0..n-1 in ascending id order. Transient systems are not recorded.
func Snapshot(scene *ecs.Scene) (ecs.SceneModel, error) {
	model := ecs.SceneModel{
		FormatVersion:    ecs.FormatVersion,
		Name:             scene.Name(),
		Systems:          []string{},
		Components:       []ecs.ComponentModel{},
		GlobalComponents: []ecs.GlobalComponentModel{},
	}

	index := make(map[ecs.EntityId]ecs.EntityId, scene.EntityCount())
	for id := range scene.AllEntities() {
		index[id] = ecs.EntityId(len(index))
	}
	model.EntityCount = len(index)

	var errs []error
	for _, store := range scene.Stores() {
		records, err := store.SerializeAllState(scene.AllEntities())
		if err != nil {
			errs = append(errs, err)
		}
		for i := range records {
			records[i].Entity = index[records[i].Entity]
		}
		model.Components = append(model.Components, ecs.ComponentModel{Type: store.Name(), Data: records})
	}

	for _, ct := range scene.Globals() {
		data, ok, err := scene.SerializeGlobal(ct)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			model.GlobalComponents = append(model.GlobalComponents, ecs.GlobalComponentModel{
				Type: scene.Registry().Name(ct),
				Data: data,
			})
		}
	}

	for _, system := range scene.Systems() {
		if ecs.IsTransient(system) {
			continue
		}
		model.Systems = append(model.Systems, ecs.SystemName(system))
	}

	if len(errs) > 0 {
		return model, eris.Wrapf(errors.Join(errs...), "snapshot %s", scene.Name())
	}
	return model, nil
}
