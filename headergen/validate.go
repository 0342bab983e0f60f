package headergen

import (
	"github.com/rubiojr/wrapgen/errors"
	"github.com/rubiojr/wrapgen/metamodel"
	ts "github.com/rubiojr/wrapgen/typesystem"
)

// validate checks the function modifications of the generated classes and
// the global ones against the model. Rules that match no function, and
// argument rules past the end of the argument list, are returned as rule
// inconsistencies; generation ignores them either way.
func (r *run) validate() []error {
	var errs []error
	for _, c := range r.classes {
		cp, ok := c.Entry.Complex()
		if !ok {
			continue
		}
		errs = append(errs, checkModifications(c.Name, cp.AllFunctionModifications(), c.Functions)...)
	}
	errs = append(errs, checkModifications("", r.db.AllFunctionModifications(), r.model.GlobalFunctions)...)
	return errs
}

func checkModifications(owner string, mods []ts.FunctionModification, fns []*metamodel.Function) []error {
	bySig := make(map[string]*metamodel.Function, len(fns))
	for _, fn := range fns {
		bySig[fn.MinimalSignature()] = fn
	}
	var errs []error
	for _, mod := range mods {
		fn, ok := bySig[mod.Signature]
		if !ok {
			err := errors.Wrapf(errors.ErrRuleInconsistency, "signature %q matches no function", mod.Signature)
			if owner != "" {
				err = errors.WithDetailf(err, "class %s", owner)
			}
			errs = append(errs, err)
			continue
		}
		for _, am := range mod.ArgumentMods {
			if am.Index > len(fn.Arguments) {
				errs = append(errs, errors.Wrapf(errors.ErrRuleInconsistency,
					"argument %d of %q is out of range", am.Index, mod.Signature))
			}
		}
	}
	return errs
}
