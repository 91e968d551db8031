package ast

// Option is a single `option "name" "value"` line as it appeared in the file.
type Option struct {
	Pos   Position
	Name  string
	Value string
}

func (o *Option) Position() Position { return o.Pos }

// Include references another ledger file. Includes are recorded so they can
// be written back out; the referenced files are not loaded.
//
//	include "accounts.beancount"
type Include struct {
	Pos      Position
	Filename string
}

func (i *Include) Position() Position { return i.Pos }

// Plugin names a processing plugin with an optional configuration string.
// Plugins are recorded only.
//
//	plugin "beancount.plugins.check_commodity" "USD,EUR"
type Plugin struct {
	Pos    Position
	Name   string
	Config string
}

func (p *Plugin) Position() Position { return p.Pos }
