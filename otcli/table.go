package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/npillmayer/otbase/ot"
	"github.com/pterm/pterm"
)

func tableOp(intp *Intp, op *Op) (error, bool) {
	tag := op.arg
	if intp.table = intp.font.Table(ot.T(tag)); intp.table == nil {
		return errors.New("table not found in font"), false
	}
	intp.stack = intp.stack[:0]
	tracer().Infof("setting table: %v", tag)
	return nil, false
}

func listOp(intp *Intp, op *Op) (err error, stop bool) {
	var nav ot.Navigator
	if nav, err = intp.checkLocation(); err != nil {
		return
	}
	l := nav.List()
	if l.Len() == 0 {
		err = errors.New("list is empty / not a list")
	} else if op.noArg() {
		pterm.Printf("List has %d entries\n", l.Len())
	} else if i, err := strconv.Atoi(op.arg); err == nil {
		loc := l.Get(i)
		size, value := loc.Size(), decodeLocation(loc, l.Name())
		switch value.(type) {
		case int:
			pterm.Printf("%s list index %d holds number = %d\n", l.Name(), i, value)
		default:
			pterm.Printf("%s list index %d holds data of %d bytes\n", l.Name(), i, size)
		}
	} else {
		err = fmt.Errorf("list index not numeric: %v", op.arg)
	}
	return
}

func mapOp(intp *Intp, op *Op) (err error, stop bool) {
	var nav ot.Navigator
	if nav, err = intp.checkLocation(); err != nil {
		return
	}
	m := nav.Map()
	if tag, ok := op.hasArg(); ok {
		target := m.LookupTag(ot.T(tag))
		tracer().Infof("%s map keys = %v", m.Name(), m.Tags())
		pterm.Printf("%s table maps [tag %v] => %v\n", m.Name(), ot.T(tag), target.Name())
		n := intp.lastPathNode()
		n.key, n.link = tag, target
		intp.setLastPathNode(n)
	} else {
		pterm.Printf("%s map keys = %v\n", m.Name(), m.Tags())
	}
	return
}

func scriptsOp(intp *Intp, op *Op) (err error, stop bool) {
	var lyt *ot.LayoutTable
	if table := intp.clearPath(); table == nil {
		return ERR_NO_TABLE, false
	} else if lyt, err = layoutTableOf(table); err != nil {
		return
	}
	scr := lyt.ScriptList
	if scr == nil {
		return errors.New("table has no script list"), false
	}
	pterm.Printf("ScriptList keys: %v\n", scr.Tags())
	n := pathNode{location: ot.NavMap("ScriptList", scr), inx: -1}
	var ok bool
	if n.key, ok = op.hasArg(); ok {
		l := scr.LookupTag(ot.T(op.arg))
		if l.IsNull() {
			err = fmt.Errorf("script lookup [%s] returns null", ot.T(op.arg).String())
			return
		}
		n.link = l
	}
	intp.stack = append(intp.stack, n)
	return
}

func featuresOp(intp *Intp, op *Op) (err error, stop bool) {
	if err = intp.checkTable(); err != nil {
		return
	}
	var lyt *ot.LayoutTable
	if lyt, err = layoutTableOf(intp.table); err != nil {
		return
	}
	features := lyt.FeatureList
	if features == nil {
		return errors.New("table has no feature list"), false
	}
	if op.noArg() {
		pterm.Printf("%s table has %d entries\n", features.Name(), features.Len())
	} else if i, err := strconv.Atoi(op.arg); err == nil {
		if i < 0 || i >= features.Len() {
			return fmt.Errorf("feature index out of range: %d", i), false
		}
		tag, _ := features.Get(i)
		pterm.Printf("%s list index %d holds feature record = %v\n", features.Name(), i, tag)
	} else {
		err = fmt.Errorf("list index not numeric: %v", op.arg)
	}
	return
}

func lookupsOp(intp *Intp, op *Op) (err error, stop bool) {
	if err = intp.checkTable(); err != nil {
		return
	}
	var lyt *ot.LayoutTable
	if lyt, err = layoutTableOf(intp.table); err != nil {
		return
	}
	if op.noArg() {
		printLookupList(lyt)
	} else if i, err := strconv.Atoi(op.arg); err == nil {
		printLookup(lyt, i)
	} else {
		tracer().Errorf("lookup index not numeric: %v", op.arg)
		err = errors.New("invalid lookup index")
	}
	return
}

// layoutTableOf returns the layout structure shared by GSUB and GPOS.
func layoutTableOf(table ot.Table) (*ot.LayoutTable, error) {
	if gsub := table.Self().AsGSub(); gsub != nil {
		return &gsub.LayoutTable, nil
	}
	if gpos := table.Self().AsGPos(); gpos != nil {
		return &gpos.LayoutTable, nil
	}
	return nil, errors.New("table is not a layout table")
}
