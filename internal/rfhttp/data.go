package rfhttp

const (
	statusPass = "PASS"
	statusFail = "FAIL"
)

const (
	faultMalformedCall = 1
	faultUnknownMethod = 2
	faultInvalidParams = 3
)

const (
	methodGetLibraryInformation   = "get_library_information"
	methodGetKeywordNames         = "get_keyword_names"
	methodRunKeyword              = "run_keyword"
	methodGetKeywordArguments     = "get_keyword_arguments"
	methodGetKeywordDocumentation = "get_keyword_documentation"
	methodGetKeywordTags          = "get_keyword_tags"
	methodGetKeywordTypes         = "get_keyword_types"
	methodStopRemoteServer        = "stop_remote_server"
)

const (
	docIntro = "__intro__"
	docInit  = "__init__"
)

// keywordResult is the result of run_keyword in the
// Robot Framework remote library interface.
type keywordResult struct {
	Status      string
	Output      string
	Return      interface{}
	Error       string
	Traceback   string
	Continuable bool
	Fatal       bool
}

func (r keywordResult) toStruct() map[string]interface{} {
	res := map[string]interface{}{
		"status": r.Status,
		"output": r.Output,
	}
	if r.Status == statusPass {
		res["return"] = r.Return
		return res
	}

	res["error"] = r.Error
	res["traceback"] = r.Traceback
	res["continuable"] = r.Continuable
	res["fatal"] = r.Fatal

	return res
}

func newPassResult(ret interface{}) keywordResult {
	return keywordResult{
		Status: statusPass,
		Return: ret,
	}
}

func newFailResult(kind string, err error) keywordResult {
	msg := err.Error()
	if kind != "" && kind != "Error" {
		msg = kind + ": " + msg
	}

	return keywordResult{
		Status: statusFail,
		Error:  msg,
	}
}
