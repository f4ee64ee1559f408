package oracle

import "strings"

// Prompt templates, keyed by request kind. Each template carries a {{DATA}}
// placeholder for the JSON payload built by the calling engine. Summaries are
// deliberately capped so the context passed to later requests stays small.

var promptTemplates = map[Kind]string{
	CompressFunction: promptCompressFunc,
	CompressType:     promptCompressType,
	CompressVariable: promptCompressVar,
	CompressPackage:  promptCompressPkg,
	CompressModule:   promptCompressModule,
	ConvertCode:      promptConvertCode,
	MergeCode:        promptMergeCode,
	ValidateCode:     promptValidateCode,
}

const promptCompressFunc = `# Character
You are a skilled programmer and you are good at reading, understanding and summarizing code. Your goal is to help engineers who know less about these APIs by making them easier to understand.

## Input format (JSON)
A function definition and descriptions of the symbols it depends on:
- "Content": the function definition, as a string
- "Related_func": array; each object is a function or method called in the body ("CallName", "Description")
- "Related_type": array; each object is a type used by the signature or body ("Name", "Description")
- "Related_var": array; each object is a global variable or constant read in the body ("Name", "Description")
- "Receiver": (optional) the method receiver; absent for plain functions
- "Params"/"Results": (optional) arrays describing parameters and return values ("Name", "Description")

## Output format (text)
Output the summary directly. Do not output JSON (IMPORTANT)!

## Summarize
- The main purpose of the function
- The meaning of each parameter and result (if any)

# Constraint
- Summarize strictly the function itself; never mention the JSON format or quote the input.
- The summary must not contain any code.
- Start your answer directly with the function name.
- (IMPORTANT) The output must fit within 500 characters.

# Now, please summarize below input:

{{DATA}}
`

const promptCompressType = `# Character
You are a skilled programmer and you are good at reading, understanding and summarizing code. Your goal is to help engineers who know less about these APIs by making them easier to understand.

## Input format (JSON)
A type definition and descriptions of the symbols it depends on:
- "Content": the type definition, as a string
- "Related_methods": array; each object is a method defined on this type ("CallName", "Description")
- "Related_types": array; each object is a type referenced by the definition ("CallName", "Description")

## Output format (text)
Output the summary directly. Do not output JSON (IMPORTANT)!

## Summarize
- The main purpose of the type
- The meaning of each field (if any)

# Constraint
- Never mention the JSON format or quote the input.
- The summary must not contain any code, and must not restate "Related_methods" or "Related_types" entries.
- Start your answer directly with the type name.
- (IMPORTANT) The output must fit within 500 characters.

# Now, please summarize below input:

{{DATA}}
`

const promptCompressVar = `# Character
You are a skilled programmer and you are good at reading, understanding and summarizing code. Your goal is to help engineers who know less about these APIs by making them easier to understand.

## Input format (JSON)
A global variable (or constant) definition and the code that references it:
- "Content": the definition, as a string
- "Type": (optional) a summary of the variable's type; simple types omit this field
- "References": array of code fragments that read or write the variable

## Output format (text)
Output the summary directly. Do not output JSON (IMPORTANT)!

## Summarize
- The main purpose of the variable
- The functions or types it is associated with (if any)

# Constraint
- Write short, plain summaries for other engineers to refer to.
- Keep technical terms consistent with the input.
- (IMPORTANT) The output must fit within 500 characters.

# Now, please summarize below input:

{{DATA}}
`

const promptCompressPkg = `# Character
You are an experienced engineer with in-depth knowledge of this codebase. Your responsibility is to summarize the basic functionality of a package from the summaries of its public symbols. Your goal is to help engineers who know less about these packages.

## Input format (JSON)
- "PkgPath": the import path of the package
- "Functions": array of public functions and methods ("Name", "Description")
- "Types": array of public types ("Name", "Description")
- "Variables": array of public globals ("Name", "Description")

## Output format (text)
Output the summary directly. Do not output JSON (IMPORTANT)!

## Summarize
- The main purpose of the package
- Its key functions, types and globals

# Constraint
- Focus on what the package offers; avoid implementation details.
- Keep technical terms consistent with the input.
- (IMPORTANT) The output must fit within 2000 characters.

# Now, please summarize below input:

{{DATA}}
`

const promptCompressModule = `# Character
You are an experienced engineer with in-depth knowledge of this codebase. Your responsibility is to summarize what a whole module does from the summaries of its packages.

## Input format (JSON)
- "Name": the module path
- "Packages": array of packages ("PkgPath", "Description")

## Output format (text)
Output the summary directly. Do not output JSON (IMPORTANT)!

## Summarize
- The overall purpose of the module
- How its main packages relate to each other

# Constraint
- Focus on what the module offers; avoid implementation details.
- (IMPORTANT) The output must fit within 2000 characters.

# Now, please summarize below input:

{{DATA}}
`

const promptConvertCode = `# Character
You are an expert in both Go and Rust. You translate one Go item at a time into idiomatic Rust, reusing the already-translated dependencies you are given instead of inventing new ones.

## Input format (JSON)
- "Name": the required Rust item name
- "Receiver": (optional) the Rust type the item must be implemented on; when present, output the item inside an impl block for that type
- "Content": the Go source of the item to translate
- "Dependencies": array; each object is an already-translated symbol available for use ("Name", "Import", "Code"); when "Import" is present you must reference the symbol through that use path
- "References": array of example Rust translations from the same codebase, for style only

## Output format
Output exactly one fenced code block marked rust containing the translated item (plus any use declarations it needs). If the item requires external crates, add one fenced code block marked toml containing a [dependencies] section.

# Constraint
- The Rust item must keep the name given in "Name".
- Do not re-output the code of dependencies; reference them.
- Unreachable or unknown behavior becomes todo!().

# Now, please translate below input:

{{DATA}}
`

const promptMergeCode = `# Character
You are an expert Rust programmer. You are given the concatenated items of one Rust source file that may contain duplicate use declarations or conflicting item definitions.

## Output format
Output one fenced code block marked rust containing the cleaned file: deduplicated use declarations at the top, every item kept exactly once, order otherwise preserved.

# Constraint
- Never drop an item that is not an exact duplicate.
- Never change item names or signatures.

# Now, please merge below input:

{{DATA}}
`

const promptValidateCode = `# Character
You are an expert Rust programmer. You are given a Rust source file and the compiler or formatter error it produced.

## Input format (JSON)
- "Code": the file content
- "Error": the error output

## Output format
Output one fenced code block marked rust containing the corrected file.

# Constraint
- Fix only what the error requires; keep everything else byte-for-byte.

# Now, please fix below input:

{{DATA}}
`

// convRetryPrompt augments a convert payload when the first completion had no
// item with the expected name and kind.
const convRetryPrompt = "Cannot find the expected Rust item named '{1}', maybe you recognize it as wrong kind (should be {2}), please use the name to output again!"

// RetryPrefix renders the second-attempt preamble for a convert request.
func RetryPrefix(rustName, kind string) string {
	out := strings.ReplaceAll(convRetryPrompt, "{1}", rustName)
	return strings.ReplaceAll(out, "{2}", kind)
}
