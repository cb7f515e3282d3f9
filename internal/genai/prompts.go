package genai

const coverLetterPrompt = `Write a professional cover letter for the following job description:
%s

Based on this resume:
%s

Keep it under 400 words. Return only the letter text.
`

const resumeTipsPrompt = `You are a professional resume reviewer.

Analyze the resume below and give 3 clear, actionable suggestions to improve it.
Number the suggestions.

Resume:
%s
`

const matchPrompt = `You are a resume screening assistant. Compare the following resume and job description, then return a JSON with match score (0-100), strengths, and gaps.

Resume:
%s

Job Description:
%s

Respond only in JSON format like this:
{
  "score": 85,
  "strengths": ["Strong Python experience", "Relevant project work"],
  "gaps": ["No cloud certification"]
}
`

const chatSystemPrompt = `You are a friendly career assistant on a job board. Help with job search,
resumes, interviews and career questions. Keep answers short and practical.`
