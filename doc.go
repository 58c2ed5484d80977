// Package calc implements an interactive floating-point calculator.
//
// Input is a sequence of statements separated by ';'. A statement is a
// constant declaration ("const pi = 3.14"), an assignment ("x = y * 2"),
// or a bare expression. Expressions support the arithmetic operators
// + - * / % with the usual precedence, unary + and -, parentheses,
// named values, and the built-in functions sin, cos, tan, asin, acos,
// atan, exp, ln, log10, log2, and pow(x, y).
//
// A Session owns the environment of named values for one calculator
// run. Statements are evaluated immediately; there is no retained
// syntax tree. Errors abort only the statement that caused them, and
// the session resynchronizes at the next ';'.
package calc
