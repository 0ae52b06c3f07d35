/*

Process of compilation

Program Text ->
	lex ->
Tokens ->
	parse ->
Abstract Syntax Tree (ast) ->
	front (with Env) ->
Backend calls ->
	back/llvm -> LLVM Assembly
	ir        -> Package ->
		vm -> Exit Value

*/
package compiler
