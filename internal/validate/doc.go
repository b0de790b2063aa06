// Package validate gates mapping sets before payload generation. Checks
// collect findings instead of failing fast, so a reviewer sees every
// problem in one pass.
package validate
