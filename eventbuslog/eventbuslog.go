// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

// Package eventbuslog adapts github.com/sirupsen/logrus to the eventbus.Logger
// collaborator interface, grounded on klokku-klokku's use of logrus as its
// sole logging library.
package eventbuslog

import "github.com/sirupsen/logrus"

// Adapter wraps a *logrus.Logger (or the package-level logrus.StandardLogger)
// to satisfy eventbus.Logger.
type Adapter struct {
	entry *logrus.Entry
}

// New wraps log, defaulting to logrus.StandardLogger() when log is nil.
func New(log *logrus.Logger) *Adapter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Adapter{entry: logrus.NewEntry(log).WithField("component", "eventbus")}
}

// Debugf implements eventbus.Logger.
func (a *Adapter) Debugf(format string, args ...any) { a.entry.Debugf(format, args...) }

// Warnf implements eventbus.Logger.
func (a *Adapter) Warnf(format string, args ...any) { a.entry.Warnf(format, args...) }

// Errorf implements eventbus.Logger.
func (a *Adapter) Errorf(format string, args ...any) { a.entry.Errorf(format, args...) }
