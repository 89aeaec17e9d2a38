package validation

var MustRegister = mustRegister
